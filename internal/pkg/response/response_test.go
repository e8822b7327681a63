package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "salescrm-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind xerrors.Kind
		want int
	}{
		{xerrors.KindNotFound, http.StatusNotFound},
		{xerrors.KindInvalidTransition, http.StatusConflict},
		{xerrors.KindAlreadyConverted, http.StatusConflict},
		{xerrors.KindDuplicateMembership, http.StatusConflict},
		{xerrors.KindMissingRequiredField, http.StatusUnprocessableEntity},
		{xerrors.KindCrossTenantReference, http.StatusUnprocessableEntity},
		{xerrors.KindNoPipelineStage, http.StatusUnprocessableEntity},
		{xerrors.KindInvalidInput, http.StatusBadRequest},
		{xerrors.KindUnauthorized, http.StatusUnauthorized},
		{xerrors.KindForbidden, http.StatusForbidden},
		{xerrors.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.kind); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
}

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, "failed to convert lead", xerrors.New(xerrors.KindAlreadyConverted, "lead 4 has already been converted"))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Kind != xerrors.KindAlreadyConverted {
		t.Fatalf("unexpected body %+v", body)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	FromError(c, "failed", errors.New("pq: connection refused"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != xerrors.ErrInternal.Error() {
		t.Fatalf("internal cause leaked: %q", body.Error)
	}
}
