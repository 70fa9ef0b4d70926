package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_IsByCode(t *testing.T) {
	sentinel := New(KindNotFound, 20001, "课程不存在")
	wrapped := fmt.Errorf("查询失败: %w", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Error("包装后的错误应能通过 errors.Is 识别")
	}
	if errors.Is(wrapped, New(KindNotFound, 20002, "其他")) {
		t.Error("不同业务码不应判定为同一错误")
	}
}

func TestAs(t *testing.T) {
	sentinel := New(KindConflict, 20002, "课程代码已存在")
	got, ok := As(fmt.Errorf("ctx: %w", sentinel))
	if !ok {
		t.Fatal("期望提取到 AppError")
	}
	if got.Code != 20002 {
		t.Errorf("期望 Code=20002，实际=%d", got.Code)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("普通错误不应提取到 AppError")
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusBadRequest,
		KindInternal:       http.StatusInternalServerError,
		KindRateLimited:    http.StatusTooManyRequests,
		KindTooLarge:       http.StatusRequestEntityTooLarge,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%s: 期望 %d，实际 %d", kind, want, got)
		}
	}
}
