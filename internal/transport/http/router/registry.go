package router

import (
	"sort"

	"library-loans/internal/transport/http/handler"
)

// APIModule / AdminModule 模块可以实现其中一个或两个
type APIModule interface{ MountAPI(handler.EZ) }
type AdminModule interface{ MountAdmin(handler.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），默认 100
type prioritizer interface{ Priority() int }

// Modules 按类型分发到用户端/管理端
type Modules struct {
	api   []APIModule
	admin []AdminModule
}

func NewModules(mods ...any) *Modules {
	m := &Modules{}
	for _, mod := range mods {
		m.Register(mod)
	}
	return m
}

func (m *Modules) Register(mod any) {
	if a, ok := mod.(APIModule); ok {
		m.api = append(m.api, a)
	}
	if a, ok := mod.(AdminModule); ok {
		m.admin = append(m.admin, a)
	}
}

func (m *Modules) MountAPI(e handler.EZ) {
	mods := append([]APIModule(nil), m.api...)
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, mod := range mods {
		mod.MountAPI(e)
	}
}

func (m *Modules) MountAdmin(e handler.EZ) {
	mods := append([]AdminModule(nil), m.admin...)
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, mod := range mods {
		mod.MountAdmin(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
