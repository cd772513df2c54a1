package testsupport

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const xflNamespace = "http://ns.adobe.com/xfl/2008/"

// DocumentXML renders a DOMDocument root with attrs and the given child
// sections (media, symbols, timelines).
func DocumentXML(attrs string, sections ...string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<DOMDocument xmlns="%s" %s>%s</DOMDocument>`, xflNamespace, attrs, strings.Join(sections, ""))
}

// TimelinesXML wraps one scene timeline per call into a timelines section.
func TimelinesXML(timelines ...string) string {
	return "<timelines>" + strings.Join(timelines, "") + "</timelines>"
}

// TimelineXML renders a DOMTimeline holding layers.
func TimelineXML(name string, layers ...string) string {
	return fmt.Sprintf(`<DOMTimeline name="%s"><layers>%s</layers></DOMTimeline>`, escape(name), strings.Join(layers, ""))
}

// LayerXML renders a DOMLayer with attrs holding frames.
func LayerXML(attrs string, frames ...string) string {
	return fmt.Sprintf(`<DOMLayer %s><frames>%s</frames></DOMLayer>`, attrs, strings.Join(frames, ""))
}

// FrameXML renders a DOMFrame with attrs holding display elements.
func FrameXML(attrs string, elements ...string) string {
	return fmt.Sprintf(`<DOMFrame %s><elements>%s</elements></DOMFrame>`, attrs, strings.Join(elements, ""))
}

// SymbolInstanceXML renders a DOMSymbolInstance; matrix may be empty.
func SymbolInstanceXML(name, matrix string) string {
	if matrix == "" {
		return fmt.Sprintf(`<DOMSymbolInstance libraryItemName="%s"/>`, escape(name))
	}
	return fmt.Sprintf(`<DOMSymbolInstance libraryItemName="%s"><matrix><Matrix %s/></matrix></DOMSymbolInstance>`, escape(name), matrix)
}

// SymbolXML renders a library symbol definition.
func SymbolXML(name, symbolType string, layers ...string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<DOMSymbolItem xmlns="%s" name="%s" symbolType="%s"><timeline>%s</timeline></DOMSymbolItem>`,
		xflNamespace, escape(name), symbolType, TimelineXML(name, layers...))
}

// IncludesXML renders a symbols section referencing library files.
func IncludesXML(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<symbols>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<Include href="%s"/>`, escape(h))
	}
	b.WriteString("</symbols>")
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
