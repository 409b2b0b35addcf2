package notion

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Property codec: one encode/decode pair per property kind the store
// understands (title, rich_text, select, status, date, relation, number).
//
// Decoding tolerates missing and renamed fields: each entity field has a
// small alias list (localized name first, then the English ones) and the
// first present key wins. An absent property yields the domain default,
// never an error.

// firstProperty returns the raw property value for the first alias present.
func firstProperty(props []byte, aliases []string) (gjson.Result, bool) {
	if len(props) == 0 {
		return gjson.Result{}, false
	}
	doc := gjson.ParseBytes(props)
	for _, key := range aliases {
		if prop := doc.Get(escapePath(key)); prop.Exists() {
			return prop, true
		}
	}
	return gjson.Result{}, false
}

// escapePath guards alias keys against gjson path syntax.
func escapePath(key string) string {
	key = strings.ReplaceAll(key, ".", `\.`)
	key = strings.ReplaceAll(key, "*", `\*`)
	key = strings.ReplaceAll(key, "?", `\?`)
	return key
}

// decodeTextRuns joins the text content of every run in a title or
// rich_text array.
func decodeTextRuns(prop gjson.Result, kind string) string {
	runs := prop.Get(kind)
	if !runs.IsArray() {
		return ""
	}
	var b strings.Builder
	for _, run := range runs.Array() {
		b.WriteString(run.Get("text.content").String())
	}
	return b.String()
}

func decodeTitle(props []byte, aliases []string) string {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return ""
	}
	return decodeTextRuns(prop, "title")
}

func decodeRichText(props []byte, aliases []string) string {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return ""
	}
	return decodeTextRuns(prop, "rich_text")
}

func decodeSelect(props []byte, aliases []string) string {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return ""
	}
	return prop.Get("select.name").String()
}

// decodeStatus reads a status property, falling back to select: the two
// kinds are structurally similar and older databases used select here.
func decodeStatus(props []byte, aliases []string) string {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return ""
	}
	if name := prop.Get("status.name").String(); name != "" {
		return name
	}
	return prop.Get("select.name").String()
}

func decodeDate(props []byte, aliases []string) (start string, end string) {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return "", ""
	}
	date := prop.Get("date")
	if !date.Exists() || date.Type == gjson.Null {
		return "", ""
	}
	return date.Get("start").String(), date.Get("end").String()
}

func decodeRelation(props []byte, aliases []string) []string {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return nil
	}
	rel := prop.Get("relation")
	if !rel.IsArray() {
		return nil
	}
	var ids []string
	for _, item := range rel.Array() {
		if id := item.Get("id").String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func decodeNumber(props []byte, aliases []string) (float64, bool) {
	prop, ok := firstProperty(props, aliases)
	if !ok {
		return 0, false
	}
	num := prop.Get("number")
	if !num.Exists() || num.Type == gjson.Null {
		return 0, false
	}
	return num.Float(), true
}

// propertyBuilder accumulates an encoded property document. Empty-valued
// title, rich_text and date entries are omitted by the entity codecs;
// select, status, relation and number are always emitted (null or empty)
// so a write can clear them explicitly.
type propertyBuilder struct {
	doc []byte
	err error
}

func newPropertyBuilder() *propertyBuilder {
	return &propertyBuilder{doc: []byte(`{}`)}
}

func (b *propertyBuilder) set(path string, value interface{}) {
	if b.err != nil {
		return
	}
	b.doc, b.err = sjson.SetBytes(b.doc, path, value)
}

func (b *propertyBuilder) setRaw(path string, raw string) {
	if b.err != nil {
		return
	}
	b.doc, b.err = sjson.SetRawBytes(b.doc, path, []byte(raw))
}

func (b *propertyBuilder) Title(key string, value string) {
	b.set(escapePath(key)+".title.0.text.content", value)
}

func (b *propertyBuilder) RichText(key string, value string) {
	b.set(escapePath(key)+".rich_text.0.text.content", value)
}

func (b *propertyBuilder) Select(key string, value string) {
	if value == "" {
		b.setRaw(escapePath(key)+".select", "null")
		return
	}
	b.set(escapePath(key)+".select.name", value)
}

func (b *propertyBuilder) Status(key string, value string) {
	if value == "" {
		b.setRaw(escapePath(key)+".status", "null")
		return
	}
	b.set(escapePath(key)+".status.name", value)
}

// Date emits {"date":null} when start is empty; an end without a start is
// not representable and is dropped with it.
func (b *propertyBuilder) Date(key string, start string, end string) {
	if start == "" {
		b.setRaw(escapePath(key)+".date", "null")
		return
	}
	b.set(escapePath(key)+".date.start", start)
	if end != "" {
		b.set(escapePath(key)+".date.end", end)
	}
}

func (b *propertyBuilder) Relation(key string, ids []string) {
	path := escapePath(key) + ".relation"
	b.setRaw(path, "[]")
	i := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		b.set(path+"."+strconv.Itoa(i)+".id", id)
		i++
	}
}

func (b *propertyBuilder) Number(key string, value int) {
	b.set(escapePath(key)+".number", value)
}

func (b *propertyBuilder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.doc, nil
}
