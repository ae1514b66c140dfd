package signal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

const MaxMessageLen = 1000

func (ctl *Controller) handleSendMessage(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.SendMessage
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, protocol.KindChatError, "Malformed message")
		return
	}

	msg := strings.TrimSpace(p.Message)
	if msg == "" {
		ctl.sendError(c, protocol.KindChatError, "Message cannot be empty")
		return
	}
	// Length is counted in characters, not bytes: a multibyte message of
	// exactly MaxMessageLen characters is accepted.
	if utf8.RuneCountInString(msg) > MaxMessageLen {
		ctl.sendError(c, protocol.KindChatError, "Message is too long (max 1000 characters)")
		return
	}
	if !ctl.chat.Allow(sid) {
		ctl.sendError(c, protocol.KindChatError, "Too many messages, slow down")
		return
	}

	// Chat goes to everyone in the room, sender included.
	ctl.router.Broadcast(domain.RoomID(p.MeetingID), protocol.ChatMessage{
		Kind:      protocol.KindNewMessage,
		ID:        fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sid),
		MeetingID: p.MeetingID,
		UserID:    pr.ID,
		UserName:  pr.Name,
		Message:   msg,
		Timestamp: protocol.Timestamp(),
		IsGuest:   pr.IsGuest,
	})
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("room", p.MeetingID).Msg("chat message")
}

func (ctl *Controller) handleTyping(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte, out protocol.Kind) {
	var p protocol.Typing
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ctl.router.BroadcastExcluding(domain.RoomID(p.MeetingID), sid, protocol.TypingEvent{
		Kind:      out,
		UserID:    pr.ID,
		UserName:  pr.Name,
		Timestamp: protocol.Timestamp(),
	})
}
