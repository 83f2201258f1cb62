package unit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	authorization "tracechain/contexts/identity-access/authorization-service"
	authzhttp "tracechain/contexts/identity-access/authorization-service/transport/http"
	traceservice "tracechain/contexts/provenance/trace-service"
)

func TestTraceServiceOpenAPIContractIncludesImplementedRoutes(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "contracts", "api", "v1", "trace-service.openapi.json"))
	if err != nil {
		t.Fatalf("read trace-service openapi: %v", err)
	}

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode trace-service openapi: %v", err)
	}

	expected := map[string][]string{
		"/api/trace/v1/products":                      {"post", "get"},
		"/api/trace/v1/products/{product_id}":         {"get"},
		"/api/trace/v1/products/{product_id}/events":  {"post", "get"},
		"/api/trace/v1/products/{product_id}/owner":   {"get"},
		"/api/trace/v1/products/{product_id}/owners":  {"get"},
		"/api/trace/v1/products/{product_id}/verify":  {"get"},
		"/api/authz/v1/accounts/grant":                {"post"},
		"/api/authz/v1/accounts/revoke":               {"post"},
		"/api/authz/v1/accounts/{account_id}":         {"get"},
		"/api/authz/v1/admin":                         {"get"},
	}

	for path, methods := range expected {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("missing path in openapi contract: %s", path)
		}
		for _, method := range methods {
			if _, ok := ops[method]; !ok {
				t.Fatalf("missing method %s for path %s in openapi contract", method, path)
			}
		}
	}

	register := doc.Paths["/api/trace/v1/products"]["post"]
	if !isHeaderRequired(register, "Idempotency-Key") {
		t.Fatalf("product registration must require Idempotency-Key")
	}
	if !isHeaderRequired(register, "X-Account-Id") {
		t.Fatalf("product registration must require X-Account-Id")
	}
}

func TestTraceServiceEventSchemasCoverCanonicalEventSet(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	cases := map[string][]string{
		"product.registered":              {"product_id", "manufacturer"},
		"product.lifecycle_event_logged":  {"product_id", "kind", "sequence", "actor"},
		"product.ownership_transferred":   {"product_id", "from_owner", "to_owner"},
	}

	for eventType, requiredFields := range cases {
		path := filepath.Join(root, "contracts", "events", "v1", eventType+".schema.json")
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read event schema %s: %v", eventType, err)
		}

		var schema map[string]any
		if err := json.Unmarshal(raw, &schema); err != nil {
			t.Fatalf("decode event schema %s: %v", eventType, err)
		}
		if title, _ := schema["title"].(string); title != eventType {
			t.Fatalf("schema %s has wrong title: %q", eventType, title)
		}

		required, _ := schema["required"].([]any)
		for _, key := range requiredFields {
			if !containsAnyString(required, key) {
				t.Fatalf("schema %s missing required payload key %s", eventType, key)
			}
		}
	}
}

func TestTraceServiceTransferEnvelopeContractConsistency(t *testing.T) {
	authzModule := authorization.NewInMemoryModule(adminAccount, nil)
	module := traceservice.NewInMemoryModule(authzModule.CheckAccess, nil)

	product := registerProduct(t, module, adminAccount, "idem-contract-register")
	logEvent(t, module, adminAccount, product.ProductID, "shipped")

	if _, err := authzModule.Handler.GrantAccessHandler(
		context.Background(),
		adminAccount,
		authzhttp.GrantAccessRequest{AccountID: "acct-contract-d"},
	); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	logEvent(t, module, "acct-contract-d", product.ProductID, "received")

	outbox, err := module.Store.ListPendingOutbox(context.Background(), 50)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(outbox) == 0 {
		t.Fatalf("expected events in outbox")
	}

	foundTransfer := false
	for _, message := range outbox {
		var envelope map[string]any
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			t.Fatalf("decode outbox payload failed: %v", err)
		}

		eventType, _ := envelope["event_type"].(string)
		if eventType != "product.ownership_transferred" {
			continue
		}
		foundTransfer = true

		if sourceService, _ := envelope["source_service"].(string); sourceService != "trace-service" {
			t.Fatalf("invalid source_service for transfer event: %q", sourceService)
		}
		if partitionPath, _ := envelope["partition_key_path"].(string); partitionPath != "product_id" {
			t.Fatalf("invalid partition_key_path for transfer event: %q", partitionPath)
		}
		partitionKey, _ := envelope["partition_key"].(string)
		if partitionKey != strconv.FormatUint(product.ProductID, 10) {
			t.Fatalf("transfer event has wrong partition_key: %q", partitionKey)
		}

		data, _ := envelope["data"].(map[string]any)
		fromOwner, _ := data["from_owner"].(string)
		toOwner, _ := data["to_owner"].(string)
		if fromOwner != adminAccount {
			t.Fatalf("transfer event has invalid from_owner: %q", fromOwner)
		}
		if strings.TrimSpace(toOwner) != "acct-contract-d" {
			t.Fatalf("transfer event has invalid to_owner: %q", toOwner)
		}
	}

	if !foundTransfer {
		t.Fatalf("expected product.ownership_transferred event in outbox")
	}
}

func containsAnyString(values []any, target string) bool {
	for _, value := range values {
		if text, ok := value.(string); ok && text == target {
			return true
		}
	}
	return false
}

func isHeaderRequired(operation any, name string) bool {
	opMap, ok := operation.(map[string]any)
	if !ok {
		return false
	}
	rawParams, ok := opMap["parameters"].([]any)
	if !ok {
		return false
	}
	for _, raw := range rawParams {
		param, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		paramName, _ := param["name"].(string)
		if !strings.EqualFold(paramName, name) {
			continue
		}
		required, _ := param["required"].(bool)
		return required
	}
	return false
}
