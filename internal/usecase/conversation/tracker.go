package conversation

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"manual-assistant/internal/domain"
)

// followupMaxWords is the word-count ceiling for the short-message
// rule: anything this short in an ongoing conversation is assumed to
// continue it.
const followupMaxWords = 6

// Continuation cues. A message matching any of these while naming no
// equipment of its own reads as a reply to the previous answer rather
// than a new question.
var followupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(yes|no|yeah|yep|nope|ok|okay|done|cool|sure)\b`),
	regexp.MustCompile(`(?i)^(it|this|that|he|she|they)\b`),
	regexp.MustCompile(`(?i)\b(it is|it's)\b`),
	regexp.MustCompile(`(?i)\b(power(ed)?\s+on|power(ed)?\s+off|turn(ed)?\s+on|turn(ed)?\s+off)\b`),
	regexp.MustCompile(`(?i)\b(blinking|flashing|solid)\b`),
	regexp.MustCompile(`(?i)\b(not\s+connected|connected)\b`),
	regexp.MustCompile(`(?i)\b(i did|i tried|i can't|i cannot|i see|i don't|i do not)\b`),
	regexp.MustCompile(`(?i)\b(error|code|message)\b`),
}

var numberedOptionLine = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+(.+)$`)

var bareNumberInput = regexp.MustCompile(`^\s*(\d+)\s*\.?\s*$`)

// Tracker classifies each incoming message against the prior turn and
// derives the retrieval inputs that carry equipment context across a
// conversation.
type Tracker struct {
	logger *slog.Logger
}

func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// ClassifyTurn decides whether a message continues the prior exchange.
// The rules run in order and the first that fires wins:
//
//  1. without a prior turn nothing can be a follow-up
//  2. a brand conflicting with the prior turn starts a new topic
//  3. so does a conflicting equipment type
//  4. naming equipment when the prior turn named none is a new topic
//  5. short messages continue the conversation
//  6. continuation cues continue it, unless the message also names
//     equipment
//
// Anything else defaults to a fresh question.
func (t *Tracker) ClassifyTurn(message string, prior domain.ConversationContext) bool {
	if !prior.HasPrior() {
		return false
	}

	brand, equipType := DetectEquipment(message)
	if brand != "" && prior.LastBrand != "" && brand != prior.LastBrand {
		return false
	}
	if equipType != "" && prior.LastType != "" && equipType != prior.LastType {
		return false
	}
	if (brand != "" || equipType != "") && prior.LastBrand == "" && prior.LastType == "" {
		return false
	}

	if countWords(message) <= followupMaxWords {
		return true
	}
	if brand == "" && equipType == "" && matchesFollowupCue(message) {
		return true
	}

	t.logger.Warn("ambiguous_turn_treated_as_new",
		slog.Int("word_count", countWords(message)))
	return false
}

// ComposeRetrievalQuery joins a follow-up with the question it follows
// so the search sees the full topic. Non-follow-ups pass through
// unchanged.
func (t *Tracker) ComposeRetrievalQuery(message string, prior domain.ConversationContext, followup bool) string {
	if !followup || prior.LastQuestion == "" {
		return message
	}
	return fmt.Sprintf("%s\nFollow-up: %s", prior.LastQuestion, message)
}

// LockHints derives the equipment lock for a follow-up turn. The
// prior turn's lock is the baseline; when the prior turn recorded no
// brand, one mentioned in the prior question fills the gap, and a
// known brand fills a missing type.
func (t *Tracker) LockHints(prior domain.ConversationContext, followup bool) domain.EquipmentLock {
	if !followup {
		return domain.EquipmentLock{}
	}

	lock := prior.Lock()
	if lock.Brand == "" && prior.LastQuestion != "" {
		if brand, _ := DetectEquipment(prior.LastQuestion); brand != "" {
			lock.Brand = brand
		}
	}
	if lock.Type == "" && lock.Brand != "" {
		lock.Type = TypeForBrand(lock.Brand)
	}
	return lock
}

// ExtractOptions pulls numbered option lines ("1. Clean the filter")
// out of an assistant answer, keyed by their number.
func ExtractOptions(answer string) map[int]string {
	matches := numberedOptionLine.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return nil
	}
	options := make(map[int]string, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, seen := options[n]; !seen {
			options[n] = strings.TrimSpace(m[2])
		}
	}
	return options
}

// ExpandNumberedReply replaces a bare-number message ("2") with the
// text of the matching option from the previous answer, so the
// retrieval query carries the actual topic. Messages that are not a
// bare number, or numbers with no matching option, pass through.
func ExpandNumberedReply(message string, prior domain.ConversationContext) string {
	m := bareNumberInput.FindStringSubmatch(message)
	if m == nil {
		return message
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return message
	}
	if text, ok := ExtractOptions(prior.LastAnswer)[n]; ok {
		return text
	}
	return message
}

func matchesFollowupCue(message string) bool {
	trimmed := strings.TrimSpace(message)
	for _, re := range followupPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func countWords(message string) int {
	return len(strings.Fields(message))
}
