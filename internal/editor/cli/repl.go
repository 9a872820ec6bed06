package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Run is the writing loop. Plain lines are appended to the open chapter and
// auto-saved after the quiet period; lines starting with ':' are commands.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Println("Auto-Author (type ':help' for commands)")

	if err := a.Login(ctx); err != nil {
		return
	}

	key, err := GetSimpleText(a.reader, "Chapter key (e.g. book1:ch1)", os.Stdout)
	if err != nil || key == "" {
		return
	}
	if err := a.Open(ctx, key); err != nil {
		fmt.Println("Failed to open chapter:", err)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("aa %s> ", a.status())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			a.AppendLine(line)
			continue
		}

		switch strings.Fields(line)[0] {
		case ":help":
			fmt.Println("Commands: :save, :status, :refresh, :logout, :logout-all, :quit (plain lines are appended to the chapter)")

		case ":save":
			a.SaveNow()

		case ":status":
			a.printSessionStatus()

		case ":refresh":
			if err := a.ctrl.Sessions.Refresh(ctx); err != nil {
				fmt.Println("Refresh failed:", err)
			} else {
				fmt.Println("Session refreshed.")
			}

		case ":logout":
			if err := a.Logout(ctx); err == nil {
				return
			}

		case ":logout-all":
			_ = a.LogoutAll(ctx)

		case ":quit", ":exit":
			a.SaveNow()
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", line)
		}
	}
}

func (a *App) printSessionStatus() {
	st := a.ctrl.Sessions.Status()
	if st == nil {
		fmt.Println("No active session.")
		return
	}
	fmt.Printf("Session %s: idle %ds, requests %d", st.SessionID, st.IdleSeconds, st.RequestCount)
	if st.TimeUntilExpirySeconds != nil {
		fmt.Printf(", expires in %ds", *st.TimeUntilExpirySeconds)
	}
	fmt.Println()
	for _, alert := range a.ctrl.Alerts.Active() {
		fmt.Printf("  [!] %s\n", alert.Message)
	}
}
