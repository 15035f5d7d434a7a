// Command ember-client is a terminal chat client: it joins one room on
// an ember-server, keeps a local SQLite history of everything it sees
// (internal/vault), and renders the thread with internal/layout's
// relayout pass through internal/widget's Frame contract.
//
// Grounded on Polqt-golang-journey's 07-tui-gitflow-manager/tui/app.go
// for the Bubble Tea Init/Update/View shape; the room server's wire
// negotiation is this protocol's own (§4.2), not anything borrowed from
// the teacher (a video-conferencing signaling server has no terminal
// client to imitate here).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/config"
	"github.com/emberhall/ember/internal/vault"
)

func main() {
	addr := flag.String("addr", "localhost:40080", "room server address")
	room := flag.String("room", "lobby", "room to join")
	nick := flag.String("nick", "", "nickname (default: a generated guest name)")
	configPath := flag.String("config", defaultConfigPath(), "path to client config TOML")
	flag.Parse()

	cfg := config.LoadClient(*configPath)
	roomCfg := cfg.RoomConfig(*room)

	nickname := *nick
	if nickname == "" {
		nickname = roomCfg.Username
	}
	if nickname == "" {
		nickname = "guest-" + uuid.NewString()[:8]
	}

	identity := roomCfg.Password
	if identity == "" {
		identity = uuid.NewString()
	}

	ctx := context.Background()
	v, err := vault.Open(ctx, cfg.VaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember-client: open vault: %v\n", err)
		os.Exit(1)
	}
	defer v.Close()

	history, err := v.Messages(ctx, *room)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember-client: load history: %v\n", err)
		os.Exit(1)
	}

	net, err := dial(ctx, *addr, *room, nickname, identity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember-client: %v\n", err)
		os.Exit(1)
	}
	defer net.conn.Close()

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go net.readLoop(readCtx)

	if err := v.RecordJoin(ctx, *room, int64(chatcore.NowNanos())); err != nil {
		fmt.Fprintf(os.Stderr, "ember-client: record join: %v\n", err)
	}

	model := newModel(*room, net, v, history)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ember-client: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ember", "config.toml")
}
