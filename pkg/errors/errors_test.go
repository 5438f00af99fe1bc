package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "woocommerce create order failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable with errors.Is")
	}
	typed := As(fmt.Errorf("outer: %w", err))
	if typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected dependency code through wrapping, got %v", typed)
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes must map to 500, got %d", meta.HTTPStatus)
	}
}

func TestAccountMismatchMetadata(t *testing.T) {
	meta := MetadataFor(CodeAccountMismatch)
	if meta.HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409 for account mismatch, got %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("account mismatch should surface details to the user")
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeCancelled, "buyer closed the approval window")
	if !IsCode(err, CodeCancelled) {
		t.Fatal("expected cancelled code match")
	}
	if IsCode(err, CodeConflict) {
		t.Fatal("unexpected conflict code match")
	}
	if IsCode(nil, CodeCancelled) {
		t.Fatal("nil error must not match any code")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeValidation, stdErrors.New("inner"), "outer")
	d := Dump(err)
	if d.Code != CodeValidation {
		t.Fatalf("expected validation code, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
