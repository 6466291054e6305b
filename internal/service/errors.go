package service

import (
	"fmt"

	"library-loans/internal/domain"
)

// storeErr 已归类的错误原样返回；未归类的存储错误视为存储不可用
func storeErr(err error) error {
	if err == nil || domain.KindOf(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

// mutationErr 事务内写步骤失败的标记，提交前遇到即整体回滚
type mutationErr struct{ err error }

func (e *mutationErr) Error() string { return e.err.Error() }
func (e *mutationErr) Unwrap() error { return e.err }

func failStep(err error) error { return &mutationErr{err: err} }
