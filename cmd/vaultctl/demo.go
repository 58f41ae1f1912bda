package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/vaultcore/internal/vault/usecase"
)

// runDemo exercises the full identity lifecycle against one fresh in-memory
// Engine: register, save a secret, sign a message, lock, log back in, read
// the secret back, recover with the issued recovery code, log in with the
// new password, and dispose.
func runDemo(ctx context.Context) error {
	engine, logger, err := buildEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to wire engine: %w", err)
	}
	defer func() {
		if err := engine.Dispose(ctx); err != nil {
			logger.Error("failed to dispose engine", slog.Any("error", err))
		}
	}()

	fmt.Println("# vaultctl demo")
	fmt.Println()

	reg, err := engine.Register(ctx, "correct-horse-battery-staple")
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	fmt.Printf("registered identity %s\n", reg.ID)
	fmt.Printf("recovery code (shown once): %s\n", reg.RecoveryCode)

	if err := engine.SaveSecret(ctx, "github-token", "ghp_demo_token_value"); err != nil {
		return fmt.Errorf("save_secret failed: %w", err)
	}
	fmt.Println("saved secret \"github-token\"")

	sig, err := engine.Sign(ctx, []byte("vaultctl demo message"))
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	fmt.Printf("signed demo message, signature is %d bytes\n", len(sig))

	engine.Lock(ctx)
	fmt.Println("locked session")

	if engine.IsAuthenticated() {
		return fmt.Errorf("engine reports authenticated immediately after lock")
	}

	login, err := engine.Login(ctx, "correct-horse-battery-staple", reg.ID)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("logged back into %s\n", login.ID)

	secret, ok, err := engine.GetSecret(ctx, "github-token")
	if err != nil {
		return fmt.Errorf("get_secret failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("secret \"github-token\" missing after re-login")
	}
	fmt.Printf("read back secret: %s\n", secret)

	engine.Lock(ctx)

	recovered, err := engine.Recover(ctx, usecase.RecoverRequest{
		ID:           reg.ID,
		RecoveryCode: reg.RecoveryCode,
		NewPassword:  "new-password-after-recovery",
		Rotate:       true,
	})
	if err != nil {
		return fmt.Errorf("recover failed: %w", err)
	}
	fmt.Printf("recovered %s, new recovery code issued: %t\n", recovered.ID, recovered.NewRecoveryCode != "")

	if _, err := engine.Login(ctx, "new-password-after-recovery", reg.ID); err != nil {
		return fmt.Errorf("login with post-recovery password failed: %w", err)
	}
	fmt.Println("confirmed login with the post-recovery password")

	fmt.Println()
	fmt.Println("demo complete")
	return nil
}
