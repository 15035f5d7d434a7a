package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/layout"
	"github.com/emberhall/ember/internal/logging"
	"github.com/emberhall/ember/internal/store"
	"github.com/emberhall/ember/internal/vault"
	"github.com/emberhall/ember/internal/widget"
	"github.com/emberhall/ember/internal/wire"
)

// model is the Bubble Tea root model for one joined room. Its shape
// follows Polqt's gitflow-manager App: a handful of sub-component
// states plus the domain state (here: the messages this session has
// seen and the layout engine tracking cursor/scroll/fold).
type model struct {
	room string
	net  *netClient
	vlt  *vault.Vault

	messages map[chatcore.MessageID]chatcore.Message
	store    *store.Memory
	lyt      *layout.State
	others   map[chatcore.SessionID]chatcore.Session

	input   textinput.Model
	editing bool
	reply   *chatcore.MessageID

	width, height int
	status        string
	lastLayout    layout.Layout
}

func newModel(room string, net *netClient, v *vault.Vault, history []chatcore.Message) *model {
	all := append([]chatcore.Message(nil), history...)
	msgByID := make(map[chatcore.MessageID]chatcore.Message, len(all))
	for _, m := range all {
		msgByID[m.ID()] = m
	}

	others := make(map[chatcore.SessionID]chatcore.Session, len(net.others))
	for _, s := range net.others {
		others[s.ID] = s
	}

	ti := textinput.New()
	ti.Placeholder = "message..."
	ti.CharLimit = 4096

	return &model{
		room:     room,
		net:      net,
		vlt:      v,
		messages: msgByID,
		store:    store.NewMemory(all),
		lyt:      layout.NewState(store.NewMemory(all), layout.LineRenderer{}, 80),
		others:   others,
		input:    ti,
	}
}

type packetMsg struct{ pkt wire.Packet }
type connClosedMsg struct{}

func waitForPacket(c *netClient) tea.Cmd {
	return func() tea.Msg {
		pkt, ok := <-c.inbound
		if !ok {
			return connClosedMsg{}
		}
		return packetMsg{pkt}
	}
}

func (m *model) Init() tea.Cmd {
	return waitForPacket(m.net)
}

func (m *model) rebuildStore() {
	all := make([]chatcore.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		all = append(all, msg)
	}
	m.store = store.NewMemory(all)
	m.lyt.Store = m.store
}

func (m *model) recordMessage(msg chatcore.Message) {
	if _, seen := m.messages[msg.ID()]; seen {
		return
	}
	m.messages[msg.ID()] = msg
	m.rebuildStore()
	if err := m.vlt.InsertMessage(context.Background(), m.room, msg); err != nil {
		logging.Warn(context.Background(), "vault insert failed", zap.Error(err))
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.lyt.Width = msg.Width
		return m, nil

	case packetMsg:
		m.handlePacket(msg.pkt)
		return m, waitForPacket(m.net)

	case connClosedMsg:
		m.status = "disconnected"
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handlePacket applies one server packet to local state. Send arrives as
// both a correlated Rpl to the sender (confirming or rejecting its own
// message) and a broadcast Ntf to everyone else (§4.4); both paths land
// the same message in the local store, so recordMessage is idempotent.
func (m *model) handlePacket(pkt wire.Packet) {
	switch {
	case pkt.Name == wire.NameJoinNtf && pkt.Frame == wire.FrameNtf:
		var ntf wire.JoinNtf
		if pkt.Decode(&ntf) == nil {
			m.others[ntf.Who.ID] = ntf.Who
		}
	case pkt.Name == wire.NamePartNtf && pkt.Frame == wire.FrameNtf:
		var ntf wire.PartNtf
		if pkt.Decode(&ntf) == nil {
			delete(m.others, ntf.Who.ID)
		}
	case pkt.Name == wire.NameNick && pkt.Frame == wire.FrameNtf:
		var ntf wire.NickNtf
		if pkt.Decode(&ntf) == nil {
			m.others[ntf.Who.ID] = ntf.Who
		}
	case pkt.Name == wire.NameSend && pkt.Frame == wire.FrameRpl:
		var rpl wire.SendRpl
		if pkt.Decode(&rpl) != nil {
			return
		}
		if rpl.Success {
			m.recordMessage(rpl.Message)
		} else {
			m.status = rpl.InvalidReason
		}
	case pkt.Name == wire.NameSend && pkt.Frame == wire.FrameNtf:
		var ntf wire.SendNtf
		if pkt.Decode(&ntf) == nil {
			m.recordMessage(ntf.Message)
		}
	}
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "esc":
			m.editing = false
			m.input.Blur()
			return m, nil
		case "enter":
			content := m.input.Value()
			m.input.SetValue("")
			m.editing = false
			m.input.Blur()
			if content != "" {
				_, err := m.net.sendCmd(wire.NameSend, wire.SendCmd{Parent: m.reply, Content: content})
				if err != nil {
					m.status = fmt.Sprintf("send failed: %v", err)
				}
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "n":
		m.editing = true
		m.reply = nil
		m.input.Focus()
		return m, textinput.Blink
	case "r":
		if m.lyt.Cursor().Kind == layout.CursorMsg {
			id := m.lyt.Cursor().MsgID
			m.reply = &id
			m.editing = true
			m.input.Focus()
			return m, textinput.Blink
		}
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "z":
		if m.lyt.Cursor().Kind == layout.CursorMsg {
			id := m.lyt.Cursor().MsgID
			if m.lyt.IsFolded(id) {
				m.lyt.Unfold(id)
			} else {
				m.lyt.Fold(id)
			}
		}
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	visible := m.lyt.LastVisibleMsgs()
	if len(visible) == 0 {
		return
	}
	cur := m.lyt.Cursor()
	idx := len(visible) - 1
	if cur.Kind == layout.CursorMsg {
		for i, id := range visible {
			if id == cur.MsgID {
				idx = i
				break
			}
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(visible) {
		m.lyt.SetCursor(layout.Cursor{Kind: layout.CursorBottom})
		return
	}
	m.lyt.SetCursor(layout.Cursor{Kind: layout.CursorMsg, MsgID: visible[idx]})
	m.lyt.RequestCorrection(layout.CorrectionMakeCursorVisible)
}

func (m *model) View() string {
	height := m.height - 3
	if height < 1 {
		height = 1
	}
	lyt, err := m.lyt.Relayout(height)
	if err != nil {
		return fmt.Sprintf("layout error: %v", err)
	}
	m.lastLayout = lyt

	list := widget.NewList()
	for _, block := range lyt.Blocks {
		list.Add(widget.NewText(m.renderBlock(block)))
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	buf := widget.NewBuffer(widget.Size{Width: width, Height: height})
	list.Render(buf)

	footer := "[n] new  [r] reply  [j/k] move  [z] fold  [q] quit"
	if m.editing {
		footer = m.input.View()
	}
	if m.status != "" {
		footer = m.status + "  " + footer
	}

	return buf.Render() + "\n" + footer
}

func (m *model) renderBlock(b layout.Block) string {
	if b.ID.IsCursor() {
		if m.editing {
			return "> " + m.input.Value()
		}
		return "> "
	}
	id, ok := b.ID.Msg()
	if !ok {
		return ""
	}
	msg, ok := m.messages[id]
	if !ok {
		return "(loading...)"
	}
	prefix := "  "
	if m.lyt.Cursor().Kind == layout.CursorMsg && m.lyt.Cursor().MsgID == id {
		prefix = "* "
	}
	if m.lyt.IsFolded(id) {
		replies := 0
		if tree, err := m.store.Tree(id); err == nil {
			replies = tree.SubtreeSize(id)
		}
		return fmt.Sprintf("%s[%s] %s (folded, %d replies)", prefix, msg.Nick, truncate(msg.Content, 40), replies)
	}
	return fmt.Sprintf("%s[%s] %s", prefix, msg.Nick, msg.Content)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
