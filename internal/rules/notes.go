package rules

import (
	"strconv"
	"strings"

	"github.com/p4th0r/cloudrules/internal/endpoints"
)

// NotesSeparator joins the "key: value" lines of a rule's notes.
const NotesSeparator = "\n"

// BuildNotes renders a record's metadata, excluding its targets, as
// "key: value" lines. Absent or empty fields are left out.
func BuildNotes(r endpoints.Record) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+": "+value)
		}
	}

	if r.ID != nil {
		add("id", strconv.Itoa(*r.ID))
	}
	add("serviceArea", r.ServiceArea)
	add("serviceAreaDisplayName", r.ServiceAreaDisplayName)
	add("tcpPorts", strings.TrimSpace(r.TCPPorts))
	add("udpPorts", strings.TrimSpace(r.UDPPorts))
	add("category", r.Category)
	if r.ExpressRoute != nil {
		add("expressRoute", strconv.FormatBool(*r.ExpressRoute))
	}
	if r.Required != nil {
		add("required", strconv.FormatBool(*r.Required))
	}
	add("notes", r.Notes)

	return strings.Join(parts, NotesSeparator)
}
