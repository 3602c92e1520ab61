package service

import (
	"time"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

// Display grouping: date separators plus consecutive-sender collapsing.
// Pure functions of the ordered message sequence: no state, safe to rerun
// on every render.

type SenderBlock struct {
	Sender   domain.Role
	SenderId *domain.UserId
	Messages []*domain.Message
}

type DayGroup struct {
	Date   time.Time // UTC midnight of the day the message was created
	Blocks []SenderBlock
}

// GroupForDisplay splits an ordered message sequence into day groups, and
// within a day collapses consecutive messages from the same sender into one
// block.
func GroupForDisplay(messages []*domain.Message) []DayGroup {
	var groups []DayGroup

	for _, msg := range messages {
		day := msg.CreatedAt.Truncate(24 * time.Hour)

		if len(groups) == 0 || !groups[len(groups)-1].Date.Equal(day) {
			groups = append(groups, DayGroup{Date: day})
		}
		g := &groups[len(groups)-1]

		if len(g.Blocks) > 0 && sameSender(&g.Blocks[len(g.Blocks)-1], msg) {
			last := &g.Blocks[len(g.Blocks)-1]
			last.Messages = append(last.Messages, msg)
			continue
		}
		g.Blocks = append(g.Blocks, SenderBlock{
			Sender:   msg.Sender,
			SenderId: msg.SenderId,
			Messages: []*domain.Message{msg},
		})
	}

	return groups
}

func sameSender(block *SenderBlock, msg *domain.Message) bool {
	if block.Sender != msg.Sender {
		return false
	}
	// system messages never collapse with each other; each admin action
	// reads as its own marker in the thread
	if msg.Sender == domain.RoleSystem {
		return false
	}
	if block.SenderId == nil || msg.SenderId == nil {
		return block.SenderId == msg.SenderId
	}
	return *block.SenderId == *msg.SenderId
}
