package chat

import (
	"fmt"
	"strings"

	"nutscredit/internal/service"
)

const welcomeText = "🥜 Welcome to the Nuts Credit Manager!"

const helpText = `🧭 Available Commands

👤 Client Commands
• /add_client <name> [credit] — Add a new client (optional starting credit)
• /list_clients — View all clients
• /update_credit <client_name> <amount> — Adjust a client's credit balance

🥜 Nut Commands
• /add_nut <nut_name> [packages] — Add a new type of nut (optional package count)
• /list_nuts — View all nut types
• /update_packages <nut_name> <delta> — Adjust a nut's package count

🧑‍💼 Admin Commands (Main admin only)
• /add_admin <admin_name> — Add a new admin
• /list_admins — View all admins

📦 Request Commands (Registered admins only)
• /add_request <nut_name> <packages> <credit_paid> [description] — Submit a supply request
• /list_requests — View all requests

• /cancel — Abort the current conversation
• /help — Show this message

💡 Example: /add_client John 500 adds a client named John with 500 credit.
Run an add command without arguments to be prompted step by step.`

// menuButtons is the inline keyboard attached to the /start message.
func menuButtons() [][]service.Button {
	return [][]service.Button{
		{
			{Text: "➕ Add Client", Data: "add_client"},
			{Text: "📋 List Clients", Data: "list_clients"},
		},
		{
			{Text: "🥜 Add Nut", Data: "add_nut"},
			{Text: "📦 List Nuts", Data: "list_nuts"},
		},
		{
			{Text: "🧑‍💼 Add Admin", Data: "add_admin"},
			{Text: "📋 List Admins", Data: "list_admins"},
		},
		{
			{Text: "📨 Add Request", Data: "add_request"},
			{Text: "📜 List Requests", Data: "list_requests"},
		},
		{
			{Text: "❓ Help", Data: "help"},
		},
	}
}

func renderClients(clients []service.ClientResponse) string {
	if len(clients) == 0 {
		return "No clients found."
	}
	lines := make([]string, 0, len(clients))
	for i, c := range clients {
		lines = append(lines, fmt.Sprintf("%d. %s — 💰 %s", i+1, c.Name, c.Credit))
	}
	return strings.Join(lines, "\n")
}

func renderNuts(nuts []service.NutResponse) string {
	if len(nuts) == 0 {
		return "No nuts found."
	}
	lines := make([]string, 0, len(nuts))
	for i, n := range nuts {
		lines = append(lines, fmt.Sprintf("%d. %s — 📦 %d packages", i+1, n.Name, n.Packages))
	}
	return strings.Join(lines, "\n")
}

func renderAdmins(admins []service.AdminResponse) string {
	if len(admins) == 0 {
		return "No admins found."
	}
	lines := make([]string, 0, len(admins))
	for i, a := range admins {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, a.Name))
	}
	return strings.Join(lines, "\n")
}

func renderRequests(requests []service.RequestResponse) string {
	if len(requests) == 0 {
		return "No requests found."
	}
	lines := make([]string, 0, len(requests))
	for i, r := range requests {
		desc := r.Description
		if desc == "" {
			desc = "-"
		}
		lines = append(lines, fmt.Sprintf("%d. 👤 %s | 🥜 %s | 📦 %d | 💰 %s | 📝 %s | %s",
			i+1, r.AdminName, r.NutName, r.Packages, r.CreditPaid, desc, r.Status))
	}
	return strings.Join(lines, "\n")
}
