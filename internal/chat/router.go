package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutscredit/internal/auth"
	"nutscredit/internal/conversation"
	"nutscredit/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const dispatchTimeout = 30 * time.Second

// Router dispatches inbound chat frames: slash commands with inline
// arguments take the fast path straight into the services; bare add
// commands and menu buttons start a conversation; free text feeds the
// open conversation; decision callbacks go to the approval coordinator.
type Router struct {
	engine    *conversation.Engine
	clients   service.ClientService
	nuts      service.NutService
	admins    service.AdminService
	requests  service.RequestService
	guard     *auth.Guard
	messenger service.Messenger
	log       zerolog.Logger
}

func NewRouter(
	engine *conversation.Engine,
	clients service.ClientService,
	nuts service.NutService,
	admins service.AdminService,
	requests service.RequestService,
	guard *auth.Guard,
	messenger service.Messenger,
	log zerolog.Logger,
) *Router {
	r := &Router{
		engine:    engine,
		clients:   clients,
		nuts:      nuts,
		admins:    admins,
		requests:  requests,
		guard:     guard,
		messenger: messenger,
		log:       log,
	}

	engine.Register(clientFlow(clients))
	engine.Register(nutFlow(nuts))
	engine.Register(adminFlow(admins, guard))
	engine.Register(requestFlow(requests, guard))

	return r
}

// HandleFrame processes one inbound event and replies on the caller's own
// chat. Replies are best-effort like every other outbound delivery.
func (r *Router) HandleFrame(caller conversation.Caller, frame InboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	var reply string
	switch frame.Type {
	case FrameCallback:
		reply = r.handleCallback(ctx, caller, frame)
	case FrameMessage:
		reply = r.handleMessage(ctx, caller, frame.Text)
	default:
		reply = "⚠️ Unsupported frame type."
	}

	if reply == "" {
		return
	}
	if err := r.messenger.SendText(ctx, caller.ChatID, reply); err != nil {
		r.log.Warn().Err(err).Str("chat_id", caller.ChatID).Msg("reply could not be delivered")
	}
}

func (r *Router) handleMessage(ctx context.Context, caller conversation.Caller, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "/") {
		return r.handleCommand(ctx, caller, text)
	}

	// Free text goes to the open conversation, if any.
	reply, handled, err := r.engine.HandleText(ctx, caller, text)
	if err != nil {
		return formatUserError(err)
	}
	if !handled {
		return "I didn't understand that. Send /help for the list of commands."
	}
	return reply
}

func (r *Router) handleCommand(ctx context.Context, caller conversation.Caller, text string) string {
	fields := strings.Fields(text)
	command, args := fields[0], fields[1:]

	switch command {
	case "/start":
		if err := r.messenger.SendText(ctx, caller.ChatID, welcomeText); err != nil {
			r.log.Warn().Err(err).Str("chat_id", caller.ChatID).Msg("welcome could not be delivered")
		}
		if _, err := r.messenger.SendPrompt(ctx, caller.ChatID, helpText+"\n\nChoose a command:", menuButtons()); err != nil {
			r.log.Warn().Err(err).Str("chat_id", caller.ChatID).Msg("menu could not be delivered")
		}
		return ""

	case "/help":
		return helpText

	case "/cancel":
		kind, cancelled := r.engine.Cancel(caller.ChatID)
		if !cancelled {
			return "Nothing to cancel."
		}
		return fmt.Sprintf("❌ Add %s cancelled.", kind)

	case "/skip":
		// Only meaningful inside a conversation, for optional fields.
		reply, handled, err := r.engine.HandleText(ctx, caller, "")
		if err != nil {
			return formatUserError(err)
		}
		if !handled {
			return "Nothing to skip."
		}
		return reply

	case "/add_client":
		return r.addClient(ctx, caller, args)
	case "/list_clients":
		return r.listClients(ctx)
	case "/update_credit":
		return r.updateCredit(ctx, caller, args)

	case "/add_nut":
		return r.addNut(ctx, caller, args)
	case "/list_nuts":
		return r.listNuts(ctx)
	case "/update_packages":
		return r.updatePackages(ctx, caller, args)

	case "/add_admin":
		return r.addAdmin(ctx, caller, args)
	case "/list_admins":
		return r.listAdmins(ctx)

	case "/add_request":
		return r.addRequest(ctx, caller, args)
	case "/list_requests":
		return r.listRequests(ctx)

	default:
		return "Unknown command. Send /help for the list of commands."
	}
}

func (r *Router) handleCallback(ctx context.Context, caller conversation.Caller, frame InboundFrame) string {
	data := frame.Data

	// Decision callbacks: request:<action>:<id>
	if strings.HasPrefix(data, service.CallbackPrefix+":") {
		return r.handleDecision(ctx, caller, frame)
	}

	switch data {
	case "add_client", "add_nut", "add_admin", "add_request":
		kind := strings.TrimPrefix(data, "add_")
		return r.startConversation(ctx, caller, kind)
	case "list_clients":
		return r.listClients(ctx)
	case "list_nuts":
		return r.listNuts(ctx)
	case "list_admins":
		return r.listAdmins(ctx)
	case "list_requests":
		return r.listRequests(ctx)
	case "help":
		return helpText
	default:
		return "❌ Invalid action."
	}
}

func (r *Router) handleDecision(ctx context.Context, caller conversation.Caller, frame InboundFrame) string {
	if !r.guard.IsMainAuthority(caller.UserID) {
		return "❌ You are not authorized to decide requests."
	}

	parts := strings.Split(frame.Data, ":")
	if len(parts) != 3 {
		return "❌ Invalid action."
	}
	action := parts[1]

	requestID, err := uuid.Parse(parts[2])
	if err != nil {
		return "❌ Invalid request id."
	}

	prompt := service.MessageRef{ChatID: caller.ChatID, MessageID: frame.MessageID}
	result, err := r.requests.Decide(ctx, requestID, action, caller.DisplayName, prompt)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			return "⚠️ This request was not found."
		}
		r.log.Error().Err(err).Str("request_id", requestID.String()).Msg("decision failed")
		return formatUserError(err)
	}
	if result.AlreadyDecided {
		return fmt.Sprintf("⚠️ This request was already decided: %s by %s.",
			strings.ToLower(result.Request.Status), result.Request.DecidedBy)
	}
	// The rewritten prompt carries the outcome; nothing more to say here.
	return ""
}

func (r *Router) startConversation(ctx context.Context, caller conversation.Caller, kind string) string {
	prompt, err := r.engine.Start(ctx, caller, kind)
	if err != nil {
		return formatUserError(err)
	}
	return prompt
}

// --- commands with inline fast paths ---

func (r *Router) addClient(ctx context.Context, caller conversation.Caller, args []string) string {
	if len(args) == 0 {
		return r.startConversation(ctx, caller, kindClient)
	}

	// Fast path: credit defaults to 0 when omitted.
	credit := decimal.Zero
	if len(args) > 1 {
		parsed, err := service.ParseCredit(args[1])
		if err != nil {
			return formatUserError(err)
		}
		credit = parsed
	}

	resp, created, err := r.clients.AddClient(ctx, caller.DisplayName, args[0], credit)
	if err != nil {
		return formatUserError(err)
	}
	if !created {
		return fmt.Sprintf("Client '%s' already exists.", resp.Name)
	}
	return fmt.Sprintf("✅ Client '%s' added with credit %s.", resp.Name, resp.Credit)
}

func (r *Router) listClients(ctx context.Context) string {
	clients, _, err := r.clients.ListClients(ctx, 1, listLimit)
	if err != nil {
		return formatUserError(err)
	}
	return renderClients(clients)
}

func (r *Router) updateCredit(ctx context.Context, caller conversation.Caller, args []string) string {
	if len(args) < 2 {
		return "Usage: /update_credit <client_name> <amount>"
	}

	amount, err := service.ParseCredit(args[1])
	if err != nil {
		return formatUserError(err)
	}

	resp, err := r.clients.AdjustCredit(ctx, caller.DisplayName, args[0], amount)
	if err != nil {
		return formatUserError(err)
	}
	return fmt.Sprintf("✅ Updated %s's credit by %s. New total: %s", resp.Name, signed(amount), resp.Credit)
}

func (r *Router) addNut(ctx context.Context, caller conversation.Caller, args []string) string {
	if len(args) == 0 {
		return r.startConversation(ctx, caller, kindNut)
	}

	packages := 0
	if len(args) > 1 {
		parsed, err := service.ParsePackages(args[1])
		if err != nil {
			return formatUserError(err)
		}
		packages = parsed
	}

	resp, created, err := r.nuts.AddNut(ctx, caller.DisplayName, args[0], packages)
	if err != nil {
		return formatUserError(err)
	}
	if !created {
		return fmt.Sprintf("Nut '%s' already exists.", resp.Name)
	}
	return fmt.Sprintf("🥜 Nut '%s' added with %d packages.", resp.Name, resp.Packages)
}

func (r *Router) listNuts(ctx context.Context) string {
	nuts, _, err := r.nuts.ListNuts(ctx, 1, listLimit)
	if err != nil {
		return formatUserError(err)
	}
	return renderNuts(nuts)
}

func (r *Router) updatePackages(ctx context.Context, caller conversation.Caller, args []string) string {
	if len(args) < 2 {
		return "Usage: /update_packages <nut_name> <delta>"
	}

	delta, err := service.ParsePackages(args[1])
	if err != nil {
		return formatUserError(err)
	}

	resp, err := r.nuts.AdjustPackages(ctx, caller.DisplayName, args[0], delta)
	if err != nil {
		return formatUserError(err)
	}
	return fmt.Sprintf("✅ Updated %s's packages by %+d. New total: %d", resp.Name, delta, resp.Packages)
}

func (r *Router) addAdmin(ctx context.Context, caller conversation.Caller, args []string) string {
	if len(args) == 0 {
		return r.startConversation(ctx, caller, kindAdmin)
	}

	// Admin names may contain spaces.
	name := strings.Join(args, " ")
	resp, created, err := r.admins.AddAdmin(ctx, caller.UserID, name)
	if err != nil {
		return formatUserError(err)
	}
	if !created {
		return fmt.Sprintf("Admin '%s' already exists.", resp.Name)
	}
	return fmt.Sprintf("✅ Admin '%s' added successfully.", resp.Name)
}

func (r *Router) listAdmins(ctx context.Context) string {
	admins, _, err := r.admins.ListAdmins(ctx, 1, listLimit)
	if err != nil {
		return formatUserError(err)
	}
	return renderAdmins(admins)
}

func (r *Router) addRequest(ctx context.Context, caller conversation.Caller, args []string) string {
	if len(args) == 0 {
		return r.startConversation(ctx, caller, kindRequest)
	}
	if len(args) < 3 {
		return "Usage: /add_request <nut_name> <packages> <credit_paid> [description]"
	}

	packages, err := service.ParsePackages(args[1])
	if err != nil {
		return formatUserError(err)
	}
	creditPaid, err := service.ParseCredit(args[2])
	if err != nil {
		return formatUserError(err)
	}

	resp, err := r.requests.Submit(ctx, service.SubmitRequestInput{
		AdminName:       caller.DisplayName,
		NutName:         args[0],
		Packages:        packages,
		CreditPaid:      creditPaid,
		Description:     strings.Join(args[3:], " "),
		RequesterChatID: caller.ChatID,
	})
	if err != nil {
		return formatUserError(err)
	}
	return fmt.Sprintf("✅ Request recorded by %s and is pending approval.", resp.AdminName)
}

func (r *Router) listRequests(ctx context.Context) string {
	requests, _, err := r.requests.ListRequests(ctx, "", 1, listLimit)
	if err != nil {
		return formatUserError(err)
	}
	return renderRequests(requests)
}

const listLimit = 50

// signed renders a delta with an explicit sign, "+50" or "-20".
func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.String()
	}
	return "+" + d.String()
}

// formatUserError maps service sentinels to chat-facing messages that name
// the corrective action where one exists.
func formatUserError(err error) string {
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		return "❌ You are not authorized to add admins."
	case errors.Is(err, service.ErrAdminNotRegistered):
		return "❌ You are not authorized to make requests. Contact the main admin to be added."
	case errors.Is(err, service.ErrNutNotFound):
		return "❌ Nut not found. Add it first with /add_nut."
	case errors.Is(err, service.ErrClientNotFound):
		return "❌ Client not found. Add it first with /add_client."
	case errors.Is(err, service.ErrInvalidPackages):
		return "❌ Invalid packages value. Use a positive integer."
	case errors.Is(err, service.ErrInvalidCredit):
		return "❌ Invalid credit value. Use a non-negative number."
	case errors.Is(err, service.ErrEmptyName):
		return "❌ Name must not be empty."
	default:
		return "⚠️ Something went wrong. Please try again."
	}
}
