package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T, ttl time.Duration) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(testSecret, ttl, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	return tm
}

func testUser(role string) *models.User {
	return &models.User{
		ID:         primitive.NewObjectID(),
		EmployeeID: "emp-001",
		FullName:   "Dana Smith",
		Email:      "dana@example.com",
		Role:       role,
	}
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	if _, err := auth.NewTokenManager("", time.Hour, zap.NewNop()); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestNewTokenManager_NonPositiveTTL(t *testing.T) {
	if _, err := auth.NewTokenManager(testSecret, 0, zap.NewNop()); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tm := newManager(t, time.Hour)
	u := testUser("manager")

	token, expiresAt, err := tm.Issue(u)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("expiry not ~1h out: %v", remaining)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != u.ID.Hex() {
		t.Errorf("subject: got %q, want %q", claims.Subject, u.ID.Hex())
	}
	if claims.Role != "manager" {
		t.Errorf("role: got %q, want %q", claims.Role, "manager")
	}
	if claims.EmployeeID != "emp-001" {
		t.Errorf("employee_id: got %q, want %q", claims.EmployeeID, "emp-001")
	}
}

func TestVerify_RoleIsStoredRole(t *testing.T) {
	// The token role always comes from the user record; there is no code
	// path that lets a caller choose the embedded role.
	tm := newManager(t, time.Hour)
	for _, role := range models.AllRoles {
		token, _, err := tm.Issue(testUser(role))
		if err != nil {
			t.Fatalf("Issue(%s) failed: %v", role, err)
		}
		claims, err := tm.Verify(token)
		if err != nil {
			t.Fatalf("Verify(%s) failed: %v", role, err)
		}
		if claims.Role != role {
			t.Errorf("role: got %q, want %q", claims.Role, role)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	tm := newManager(t, time.Millisecond)
	token, _, err := tm.Issue(testUser("employee"))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := tm.Verify(token); err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tm := newManager(t, time.Hour)
	other, err := auth.NewTokenManager("another-secret-key-that-is-32-ch", time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	token, _, err := other.Issue(testUser("admin"))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := tm.Verify(token); err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for mis-signed token, got %v", err)
	}
}

func TestVerify_RejectsUnsignedAlg(t *testing.T) {
	tm := newManager(t, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": "admin",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none-alg token failed: %v", err)
	}

	if _, err := tm.Verify(token); err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for alg=none token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	tm := newManager(t, time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.Verify(tok); err != auth.ErrInvalidToken {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
