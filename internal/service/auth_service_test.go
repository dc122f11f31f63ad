package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/api"
)

func TestRegisterLoginAndGetCurrentUser(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	anon := env.clients("")

	reg, err := anon.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" {
		t.Error("expected token")
	}
	if reg.Msg.User.Email != "alice@example.com" {
		t.Errorf("email: expected normalized address, got %q", reg.Msg.User.Email)
	}

	login, err := anon.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	me, err := env.clients(login.Msg.Token).auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.ID != reg.Msg.User.ID || me.Msg.User.DisplayName != "Alice" {
		t.Errorf("unexpected user: %+v", me.Msg.User)
	}
}

func TestRegister_Errors(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "bob")
	anon := env.clients("")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		want connect.Code
	}{
		{"duplicate email", &api.RegisterRequest{Email: "bob@example.com", DisplayName: "Bob 2", Password: "password123"}, connect.CodeAlreadyExists},
		{"weak password", &api.RegisterRequest{Email: "c@example.com", DisplayName: "C", Password: "short"}, connect.CodeInvalidArgument},
		{"missing email", &api.RegisterRequest{DisplayName: "C", Password: "password123"}, connect.CodeInvalidArgument},
		{"missing display name", &api.RegisterRequest{Email: "c@example.com", Password: "password123"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := anon.auth.Register(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.want)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupTestServer(t)
	env.user(t, "carol")

	_, err := env.clients("").auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email:    "carol@example.com",
		Password: "not-the-password",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestProtectedProcedures_RequireToken(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.clients("").group.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.clients("garbage").auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}
