package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// TimeLayout formats item timestamps in exports.
const TimeLayout = "2006. 1. 2. 15:04:05"

const textHeader = "=== 대화 기록 ===\n\n"

const htmlSkeleton = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title></title></head>
<body><h1></h1><ol class="history"></ol></body>
</html>`

// ExportFileName returns the download name for a text export made at t.
func ExportFileName(t time.Time) string {
	return "대화기록_" + t.Format("2006-01-02") + ".txt"
}

// WriteText writes items as a plain-text transcript in the order given.
func WriteText(w io.Writer, items []Item, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString(textHeader)
	for _, item := range items {
		if item.Starred {
			b.WriteString("⭐ ")
		}
		fmt.Fprintf(&b, "[%s]\n", item.Timestamp.In(loc).Format(TimeLayout))
		fmt.Fprintf(&b, "원문: %s\n", item.SourceText)
		fmt.Fprintf(&b, "번역: %s\n\n", item.TargetText)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHTML writes a session as a standalone HTML page whose lang attribute
// is the session's listening language.
func WriteHTML(w io.Writer, session Session, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSkeleton))
	if err != nil {
		return fmt.Errorf("parsing export template: %w", err)
	}

	lang := session.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	doc.Find("html").SetAttr("lang", strings.ToLower(lang))

	title := fmt.Sprintf("대화 기록 #%d", session.ID)
	doc.Find("title").SetText(title)
	doc.Find("h1").SetText(title)

	list := doc.Find("ol.history")
	for _, item := range session.Items {
		list.AppendHtml(`<li><time></time><p class="source"></p><p class="target"></p></li>`)
		entry := list.Children().Last()

		if item.Starred {
			entry.AddClass("starred")
		}
		entry.SetAttr("data-id", fmt.Sprint(item.ID))
		if item.DetectedLang != "" {
			entry.Find("p.source").SetAttr("lang", strings.ToLower(item.DetectedLang))
		}

		ts := item.Timestamp.In(loc)
		entry.Find("time").SetAttr("datetime", ts.Format(time.RFC3339)).SetText(ts.Format(TimeLayout))
		entry.Find("p.source").SetText(item.SourceText)
		entry.Find("p.target").SetText(item.TargetText)
	}

	out, err := doc.Html()
	if err != nil {
		return fmt.Errorf("rendering export: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
