package chat

import (
	"context"
	"fmt"

	"nutscredit/internal/auth"
	"nutscredit/internal/conversation"
	"nutscredit/internal/service"
)

// Entity kinds, used as flow names and menu callback payloads.
const (
	kindClient  = "client"
	kindNut     = "nut"
	kindAdmin   = "admin"
	kindRequest = "request"
)

// clientFlow collects name and starting credit, then commits through the
// same service call the inline fast path uses.
func clientFlow(clients service.ClientService) *conversation.Flow {
	return &conversation.Flow{
		Kind: kindClient,
		Steps: []conversation.Step{
			{
				Key:     "name",
				Prompt:  "Please enter the client's name:",
				Field:   conversation.Text,
				Invalid: "❌ Invalid name. Please send the client's name as text:",
			},
			{
				Key:     "credit",
				Prompt:  "Please enter the starting credit (number):",
				Field:   conversation.Decimal,
				Invalid: "❌ Invalid number. Please enter a valid credit amount:",
			},
		},
		Commit: func(ctx context.Context, caller conversation.Caller, values conversation.Values) (string, error) {
			name := values.String("name")
			resp, created, err := clients.AddClient(ctx, caller.DisplayName, name, values.Decimal("credit"))
			if err != nil {
				return "", err
			}
			if !created {
				return fmt.Sprintf("Client '%s' already exists.", resp.Name), nil
			}
			return fmt.Sprintf("✅ Client '%s' added with credit %s.", resp.Name, resp.Credit), nil
		},
	}
}

func nutFlow(nuts service.NutService) *conversation.Flow {
	return &conversation.Flow{
		Kind: kindNut,
		Steps: []conversation.Step{
			{
				Key:     "name",
				Prompt:  "Please enter the nut's name:",
				Field:   conversation.Text,
				Invalid: "❌ Invalid name. Please send the nut's name as text:",
			},
			{
				Key:     "packages",
				Prompt:  "Please enter number of packages (integer):",
				Field:   conversation.Integer,
				Invalid: "❌ Invalid number. Please enter an integer for packages:",
			},
		},
		Commit: func(ctx context.Context, caller conversation.Caller, values conversation.Values) (string, error) {
			resp, created, err := nuts.AddNut(ctx, caller.DisplayName, values.String("name"), values.Int("packages"))
			if err != nil {
				return "", err
			}
			if !created {
				return fmt.Sprintf("Nut '%s' already exists.", resp.Name), nil
			}
			return fmt.Sprintf("🥜 Nut '%s' added with %d packages.", resp.Name, resp.Packages), nil
		},
	}
}

// adminFlow re-checks the main-authority gate at entry: only the configured
// authority may even start this conversation.
func adminFlow(admins service.AdminService, guard *auth.Guard) *conversation.Flow {
	return &conversation.Flow{
		Kind: kindAdmin,
		EntryGuard: func(ctx context.Context, caller conversation.Caller) error {
			if !guard.IsMainAuthority(caller.UserID) {
				return service.ErrNotAuthorized
			}
			return nil
		},
		Steps: []conversation.Step{
			{
				Key:     "name",
				Prompt:  "Please enter the admin's name:",
				Field:   conversation.Text,
				Invalid: "❌ Invalid name. Please send the admin's name as text:",
			},
		},
		Commit: func(ctx context.Context, caller conversation.Caller, values conversation.Values) (string, error) {
			resp, created, err := admins.AddAdmin(ctx, caller.UserID, values.String("name"))
			if err != nil {
				return "", err
			}
			if !created {
				return fmt.Sprintf("Admin '%s' already exists.", resp.Name), nil
			}
			return fmt.Sprintf("✅ Admin '%s' added successfully.", resp.Name), nil
		},
	}
}

// requestFlow gates entry on the caller being a registered admin. The
// commit re-validates both the admin and the named nut through Submit,
// because an arbitrary amount of time may have passed since entry.
func requestFlow(requests service.RequestService, guard *auth.Guard) *conversation.Flow {
	return &conversation.Flow{
		Kind: kindRequest,
		EntryGuard: func(ctx context.Context, caller conversation.Caller) error {
			admin, err := guard.RegisteredAdmin(ctx, caller.DisplayName)
			if err != nil {
				return err
			}
			if admin == nil {
				return service.ErrAdminNotRegistered
			}
			return nil
		},
		Steps: []conversation.Step{
			{
				Key:     "nut_name",
				Prompt:  "Please enter the nut's name:",
				Field:   conversation.Text,
				Invalid: "❌ Invalid nut name. Please send the nut name as text:",
			},
			{
				Key:     "packages",
				Prompt:  "Please enter number of packages (integer):",
				Field:   conversation.Integer,
				Invalid: "❌ Invalid number. Please enter an integer for packages:",
			},
			{
				Key:     "credit_paid",
				Prompt:  "Please enter credit paid (number):",
				Field:   conversation.Decimal,
				Invalid: "❌ Invalid number. Please enter a valid credit amount:",
			},
			{
				Key:     "description",
				Prompt:  "Optional: enter a description or send /skip to leave blank:",
				Field:   conversation.OptionalText,
				Invalid: "",
			},
		},
		Commit: func(ctx context.Context, caller conversation.Caller, values conversation.Values) (string, error) {
			resp, err := requests.Submit(ctx, service.SubmitRequestInput{
				AdminName:       caller.DisplayName,
				NutName:         values.String("nut_name"),
				Packages:        values.Int("packages"),
				CreditPaid:      values.Decimal("credit_paid"),
				Description:     values.String("description"),
				RequesterChatID: caller.ChatID,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Request recorded by %s and is pending approval.", resp.AdminName), nil
		},
	}
}
