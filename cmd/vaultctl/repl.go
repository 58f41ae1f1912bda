package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/allisson/vaultcore/internal/vault/usecase"
)

// runRepl starts a line-oriented shell around one Engine instance, so a
// single process can register, lock and log back in against the same
// in-memory store without needing a real host application.
func runRepl(ctx context.Context) error {
	engine, logger, err := buildEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to wire engine: %w", err)
	}
	defer func() {
		if err := engine.Dispose(ctx); err != nil {
			logger.Error("failed to dispose engine", slog.Any("error", err))
		}
	}()

	fmt.Println("vaultctl repl — type \"help\" for commands, \"quit\" to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("vault> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := dispatch(ctx, engine, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func dispatch(ctx context.Context, engine usecase.Engine, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
		return nil
	case "register":
		if len(args) != 1 {
			return fmt.Errorf("usage: register <password>")
		}
		res, err := engine.Register(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("id: %s\nrecovery code (shown once): %s\n", res.ID, res.RecoveryCode)
		return nil
	case "login":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: login <password> [id]")
		}
		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		res, err := engine.Login(ctx, args[0], id)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", res.ID)
		return nil
	case "recover":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: recover <recovery-code> <new-password> [id]")
		}
		id := ""
		if len(args) == 3 {
			id = args[2]
		}
		res, err := engine.Recover(ctx, usecase.RecoverRequest{
			RecoveryCode: args[0],
			NewPassword:  args[1],
			ID:           id,
			Rotate:       true,
		})
		if err != nil {
			return err
		}
		fmt.Printf("recovered %s, new recovery code: %s\n", res.ID, res.NewRecoveryCode)
		return nil
	case "lock":
		engine.Lock(ctx)
		fmt.Println("locked")
		return nil
	case "whoami":
		id, err := engine.GetID()
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	case "list-ids":
		ids, err := engine.ListStoredIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	case "sign":
		if len(args) != 1 {
			return fmt.Errorf("usage: sign <message>")
		}
		sig, err := engine.Sign(ctx, []byte(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%x\n", sig)
		return nil
	case "save-secret":
		if len(args) != 2 {
			return fmt.Errorf("usage: save-secret <key> <value>")
		}
		return engine.SaveSecret(ctx, args[0], args[1])
	case "get-secret":
		if len(args) != 1 {
			return fmt.Errorf("usage: get-secret <key>")
		}
		value, ok, err := engine.GetSecret(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("(not set)")
			return nil
		}
		fmt.Println(value)
		return nil
	case "delete-secret":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete-secret <key>")
		}
		return engine.DeleteSecret(ctx, args[0])
	case "list-secrets":
		keys, err := engine.ListSecretKeys(ctx)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q, type \"help\" for a list", cmd)
	}
}

func printHelp() {
	fmt.Println(`commands:
  register <password>
  login <password> [id]
  recover <recovery-code> <new-password> [id]
  lock
  whoami
  list-ids
  sign <message>
  save-secret <key> <value>
  get-secret <key>
  delete-secret <key>
  list-secrets
  quit`)
}
