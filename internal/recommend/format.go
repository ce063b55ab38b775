// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"fmt"
	"strings"
)

// Formatter renders Hebrew replies. All user-facing text is produced
// here so the rest of the pipeline stays language-agnostic.
type Formatter struct{}

const (
	descriptionLimit = 200
	separator        = "=============================="
)

// WelcomeMessage greets a new user and explains how to ask.
const WelcomeMessage = `🎧 היי! אני SHMALI - הבוט שלך להמלצות פודקאסטים!

💬 ספר לי במדויק מה אתה מחפש:

דוגמאות:
• "רוצה לשמוע פודקאסט על ספורט"
• "רוצה לשמוע פודקאסט על בורסה בעברית עד חצי שעה"
• "פודקאסט על טכנולוגיה באנגלית"
• "פודקאסט בעברית על פסיכולוגיה עד שעה"

איך אני יכול לעזור לך?
*אני לא עובד אם לא תרשום לי את התחום שבו אתה מחפש*`

// ResetMessage confirms a conversation reset.
const ResetMessage = "🔄 השיחה אופסה! \n\n" + WelcomeMessage

// ExhaustedMessage is sent when the candidate pool has no unseen items left.
const ExhaustedMessage = "😔 נגמרו ההמלצות בנושא זה. נסה לחפש נושא אחר או תאר אחרת את מה שאתה מחפש."

// NotHebrewMessage is sent when a message does not look like Hebrew.
const NotHebrewMessage = "🤖 אני מבין רק עברית. אנא כתוב בעברית מה אתה מחפש."

// NoHistoryMessage is sent when "more" arrives without a prior search.
const NoHistoryMessage = "🤔 לא מצאתי היסטוריה של חיפוש פודקאסטים. אנא תאר איזה פודקאסט אתה מחפש."

// ErrorMessage is the catch-all reply when a turn fails unexpectedly.
const ErrorMessage = "😅 משהו השתבש. תנסה שוב?"

// Recommendation renders one item with a personalized intro and usage hints.
func (f Formatter) Recommendation(item CatalogItem, req StructuredRequest, continuation bool) string {
	var b strings.Builder

	b.WriteString(f.intro(req, continuation))
	b.WriteString("\n" + separator + "\n")

	b.WriteString(fmt.Sprintf("\n🎧 **%s**\n", item.Name))
	b.WriteString(fmt.Sprintf("👤 מאת: %s\n", item.Publisher))

	if lang := languageName(item.Languages); lang != "" {
		b.WriteString(fmt.Sprintf("🗣️ שפה: %s\n", lang))
	}

	if item.DurationMinutes > 0 {
		b.WriteString(fmt.Sprintf("⏱️ משך: %d דקות\n", item.DurationMinutes))
	}

	b.WriteString(fmt.Sprintf("📝 %s\n", truncate(item.Description, descriptionLimit)))
	b.WriteString(fmt.Sprintf("🔗 [להאזנה](%s)\n", item.URL))

	b.WriteString("\n" + separator + "\n")
	b.WriteString("💡 רוצה עוד המלצה? פשוט תכתוב 'עוד' או 'עוד המלצה'\n")
	b.WriteString("🔍 לחיפוש נושא חדש - פשוט תכתוב מה מעניין אותך\n")
	b.WriteString("🔄 להתחלה מחדש: /reset")

	return b.String()
}

// intro builds the personalized opening line. Continuation turns get a
// short "here is another one"; fresh searches restate what was asked.
func (f Formatter) intro(req StructuredRequest, continuation bool) string {
	if continuation {
		return "הנה עוד המלצה:"
	}

	intro := "הנה מה שמצאתי בשבילך"

	if len(req.Topics) > 0 {
		intro += " - פודקאסט על " + strings.Join(req.Topics, ", ")
	}
	if req.MaxDurationMinutes > 0 {
		intro += fmt.Sprintf(" עד %d דקות", req.MaxDurationMinutes)
	}
	switch req.Language {
	case LanguageEnglish:
		intro += " באנגלית"
	case LanguageHebrew:
		intro += " בעברית"
	}

	return intro + ":"
}

// OutOfDomainReply answers a message that is not a podcast request with
// a themed redirect back to podcasts.
func (f Formatter) OutOfDomainReply(text string) string {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, []string{"מזג", "weather", "טמפרטורה"}):
		return "🌤️ אני מתמחה רק במתן המלצות על פודקאסטים, לא במזג האוויר.\n\nאם אתה מחפש פודקאסט על מטאורולוגיה או מדעי האטמוספירה - אני אשמח לעזור! 🎧"
	case containsAny(lower, []string{"שעה", "זמן", "תאריך"}):
		return "⏰ אני לא יודע מה השעה, אבל אני יכול להמליץ לך על פודקאסטים מעולים!\n\nמה מעניין אותך לשמוע? 🎧"
	case containsAny(lower, []string{"היי", "שלום", "hello"}):
		return "👋 שלום! אני SHMALI - הבוט להמלצות פודקאסטים!\n\nספר לי איזה נושא מעניין אותך ואמצא לך פודקאסט מושלם! 🎧"
	case containsAny(lower, []string{"תודה", "thanks"}):
		return "😊 אין בעד מה! האם תרצה עוד המלצות על פודקאסטים? פשוט ספר לי איזה נושא מעניין אותך! 🎧"
	case containsAny(lower, []string{"דרך", "נסיעה", "מיקום"}):
		return "🗺️ אני לא מומחה בניווט, אבל אני יכול להמליץ לך על פודקאסטים נהדרים לדרך!\n\nאיזה נושא תרצה לשמוע בנסיעה? 🎧"
	default:
		return fmt.Sprintf("🤖 אני מתמחה רק במתן המלצות על פודקאסטים.\n\nאם '%s' קשור לנושא שתרצה לשמוע עליו בפודקאסט - ספר לי יותר פרטים! 🎧", text)
	}
}

// languageName maps language tags to a Hebrew display name.
func languageName(tags []string) string {
	for _, tag := range tags {
		if tag == "he" || tag == "iw" {
			return "עברית"
		}
	}
	for _, tag := range tags {
		if strings.Contains(tag, "en") {
			return "אנגלית"
		}
	}
	return ""
}

// truncate cuts s at limit runes, appending an ellipsis when trimmed.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
