package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainError(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil error must map to nil")
	}

	wrapped := fmt.Errorf("lookup: %w", NewForbiddenReason(CodeNoFirm, "must belong to a firm"))
	de := ToDomainError(wrapped)
	if de.Code != CodeNoFirm || de.HTTPStatus != http.StatusForbidden {
		t.Fatalf("unexpected mapping: %+v", de)
	}

	de = ToDomainError(fmt.Errorf("scan: %w", pgx.ErrNoRows))
	if de.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 for no rows, got %d", de.HTTPStatus)
	}

	de = ToDomainError(errors.New("boom"))
	if de.Code != CodeInternal || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal error, got %+v", de)
	}
}

func TestWithStatusKeepsOriginal(t *testing.T) {
	orig := NewForbiddenReason(CodeNoMatchingCompany, "no company").(*DomainError)
	moved := orig.WithStatus(http.StatusNotFound)
	if moved.Code != CodeNoMatchingCompany || moved.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected copy: %+v", moved)
	}
	if orig.HTTPStatus != http.StatusForbidden {
		t.Fatal("original must not change")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewAlreadyProcessed("accepted"))
	if !HasCode(err, CodeAlreadyProcessed) {
		t.Fatal("expected code to be found through wrapping")
	}
	if HasCode(err, CodeConflict) {
		t.Fatal("unexpected code match")
	}
}
