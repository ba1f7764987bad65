package responses

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/dealdesk/dealdesk-backend/pkg/errors"
)

func TestWriteSuccessMergesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, 201, "deal created", map[string]any{"deal": map[string]any{"title": "widgets"}})

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["success"] != true {
		t.Fatal("success should be true")
	}
	if body["message"] != "deal created" {
		t.Fatalf("message = %v", body["message"])
	}
	deal, ok := body["deal"].(map[string]any)
	if !ok || deal["title"] != "widgets" {
		t.Fatalf("payload not merged: %v", body["deal"])
	}
}

func TestWriteErrorUsesTaxonomyStatus(t *testing.T) {
	cases := []struct {
		code   pkgerrors.Code
		status int
	}{
		{pkgerrors.CodeValidation, 400},
		{pkgerrors.CodeUnauthorized, 401},
		{pkgerrors.CodeForbidden, 403},
		{pkgerrors.CodeNotFound, 404},
		{pkgerrors.CodeConflict, 409},
		{pkgerrors.CodeStateConflict, 422},
		{pkgerrors.CodeInternal, 500},
		{pkgerrors.CodeDependency, 503},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, pkgerrors.New(tc.code, "boom"))
		if rec.Code != tc.status {
			t.Fatalf("code %s: status = %d, want %d", tc.code, rec.Code, tc.status)
		}

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["success"] != false {
			t.Fatal("success should be false")
		}
		if body["code"] != string(tc.code) {
			t.Fatalf("code = %v, want %s", body["code"], tc.code)
		}
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "db password leaked"))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] == "db password leaked" {
		t.Fatal("internal message must not reach the client")
	}
}

func TestWriteErrorIncludesValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"title": "is required"})
	WriteError(context.Background(), nil, rec, err)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	details, ok := body["details"].(map[string]any)
	if !ok || details["title"] != "is required" {
		t.Fatalf("details = %v", body["details"])
	}
}
