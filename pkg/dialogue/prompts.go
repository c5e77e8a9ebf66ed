package dialogue

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/holocron-engine/pkg/chat"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

// Tone guidance per standing, appended to the system prompt so the
// generator plays the NPC's stance rather than inventing one.
var standingPrompts = map[faction.Standing]string{
	faction.StandingHostile:  "The NPC despises the player and shows it: curt, threatening, looking for an excuse to end the conversation or worse.",
	faction.StandingWary:     "The NPC distrusts the player. Answers are guarded, information is withheld, favors are refused.",
	faction.StandingNeutral:  "The NPC is indifferent. Business is possible but nothing is free.",
	faction.StandingFriendly: "The NPC is warm toward the player and willing to share rumors or minor help.",
	faction.StandingAllied:   "The NPC treats the player as one of their own and speaks openly, including about faction business.",
}

var posturePrompts = map[faction.Posture]string{
	faction.PostureCalm:    "The faction is not watching for the player; the NPC has no particular reason for suspicion.",
	faction.PostureAlert:   "The faction has noticed the player's activities. The NPC is attentive and may probe for intentions.",
	faction.PostureHunting: "The faction is actively hunting the player. The NPC may stall, signal others, or demand the player leave.",
}

var alignmentPrompts = map[string]string{
	"Light": "The player carries a reputation for honor; NPCs who know of them expect fair dealing.",
	"Grey":  "The player's reputation is ambiguous; NPCs read them on behavior alone.",
	"Dark":  "Word of the player's ruthlessness precedes them; NPCs are careful not to provoke them.",
}

// BuildMessages assembles the chat messages for one NPC dialogue turn:
// a system prompt projected from the context, the caller's scene text,
// and the player's line. The external generator call happens after this
// returns, outside this package.
func BuildMessages(dc *Context, req *chat.DialogueRequest) []chat.ChatMessage {
	var sb strings.Builder

	npcName := req.NPCName
	if npcName == "" {
		npcName = fmt.Sprintf("a representative of the %s", dc.FactionName)
	}

	sb.WriteString(fmt.Sprintf(
		"You are roleplaying %s in a Star Wars campaign. Stay in character and reply with dialogue only.",
		npcName))
	sb.WriteString("\n\n" + standingPrompts[dc.Disposition.Standing])
	sb.WriteString("\n" + posturePrompts[dc.Disposition.Posture])
	if p, ok := alignmentPrompts[string(dc.AlignmentLabel)]; ok {
		sb.WriteString("\n" + p)
	}

	if len(dc.RecentEvents) > 0 {
		sb.WriteString("\n\nRecent player activity, newest first:")
		for _, ev := range dc.RecentEvents {
			sb.WriteString(fmt.Sprintf("\n- %s against %s", ev.Action, strings.Join(ev.Targets, ", ")))
		}
	}

	if req.Scene != "" {
		sb.WriteString("\n\nScene: " + req.Scene)
	}

	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: sb.String()},
		{Role: chat.ChatRoleUser, Content: req.Message},
	}
}
