package publicdata

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

// ErrMalformedFeed is returned when a feed body cannot be decoded or does not
// have the response/body structure.
var ErrMalformedFeed = errors.New("malformed feed response")

// ErrFeedRejected is returned when the feed answered with a non-success result code.
var ErrFeedRejected = errors.New("feed rejected request")

const maxDiagnosticLen = 300

type xmlEnvelope struct {
	XMLName xml.Name
	Header  *xmlHeader `xml:"header"`
	Body    *xmlBody   `xml:"body"`
	// Gateway-level failures (bad key, quota) use a different root element.
	CmmMsgHeader *xmlGatewayHeader `xml:"cmmMsgHeader"`
}

type xmlHeader struct {
	ResultCode string `xml:"resultCode"`
	ResultMsg  string `xml:"resultMsg"`
}

type xmlGatewayHeader struct {
	ErrMsg           string `xml:"errMsg"`
	ReturnAuthMsg    string `xml:"returnAuthMsg"`
	ReturnReasonCode string `xml:"returnReasonCode"`
}

type xmlBody struct {
	Items *xmlItems `xml:"items"`
}

type xmlItems struct {
	Item []xmlItem `xml:"item"`
}

type xmlItem struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// DecodeXML normalizes an XML feed body into a flat item list. An absent or
// empty <items> element yields an empty, non-nil slice.
func DecodeXML(body []byte) ([]entities.RawFeedItem, error) {
	var env xmlEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrMalformedFeed, err, diagnostic(body))
	}

	if env.XMLName.Local != "response" {
		if h := env.CmmMsgHeader; h != nil {
			return nil, fmt.Errorf("%w: %s (%s, code %s)", ErrFeedRejected, h.ErrMsg, h.ReturnAuthMsg, h.ReturnReasonCode)
		}
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrMalformedFeed, env.XMLName.Local)
	}
	if env.Header != nil && !successCode(env.Header.ResultCode) {
		return nil, fmt.Errorf("%w: %s (code %s)", ErrFeedRejected, env.Header.ResultMsg, env.Header.ResultCode)
	}
	if env.Body == nil {
		return nil, fmt.Errorf("%w: missing body", ErrMalformedFeed)
	}

	items := make([]entities.RawFeedItem, 0)
	if env.Body.Items == nil {
		return items, nil
	}
	for _, it := range env.Body.Items.Item {
		raw := make(entities.RawFeedItem, len(it.Fields))
		for _, f := range it.Fields {
			raw[f.XMLName.Local] = strings.TrimSpace(f.Value)
		}
		items = append(items, raw)
	}
	return items, nil
}

type jsonEnvelope struct {
	Response *struct {
		Header *struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body *struct {
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// DecodeJSON normalizes a JSON feed body (_type=json). The "items" field is
// absent, null, an empty string, a single {"item": {...}} or a list
// {"item": [...]}; all of them come out as a flat item list.
func DecodeJSON(body []byte) ([]entities.RawFeedItem, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrMalformedFeed, err, diagnostic(body))
	}
	if env.Response == nil {
		return nil, fmt.Errorf("%w: missing response: %s", ErrMalformedFeed, diagnostic(body))
	}
	if h := env.Response.Header; h != nil && !successCode(h.ResultCode) {
		return nil, fmt.Errorf("%w: %s (code %s)", ErrFeedRejected, h.ResultMsg, h.ResultCode)
	}
	if env.Response.Body == nil {
		return nil, fmt.Errorf("%w: missing body", ErrMalformedFeed)
	}

	raw := bytes.TrimSpace(env.Response.Body.Items)
	if isEmptyJSON(raw) {
		return make([]entities.RawFeedItem, 0), nil
	}

	if raw[0] == '{' {
		var wrapper struct {
			Item json.RawMessage `json:"item"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: items: %v", ErrMalformedFeed, err)
		}
		raw = bytes.TrimSpace(wrapper.Item)
		if isEmptyJSON(raw) {
			return make([]entities.RawFeedItem, 0), nil
		}
	}

	var objects []map[string]json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &objects); err != nil {
			return nil, fmt.Errorf("%w: item list: %v", ErrMalformedFeed, err)
		}
	case '{':
		var single map[string]json.RawMessage
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: item: %v", ErrMalformedFeed, err)
		}
		objects = append(objects, single)
	default:
		return nil, fmt.Errorf("%w: unexpected items value %s", ErrMalformedFeed, diagnostic(raw))
	}

	items := make([]entities.RawFeedItem, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		item := make(entities.RawFeedItem, len(obj))
		for k, v := range obj {
			if s, ok := scalarText(v); ok {
				item[k] = s
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// scalarText renders a JSON scalar as text; nested values and null are dropped.
func scalarText(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return "", false
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '{', '[':
		return "", false
	default:
		return string(v), true
	}
}

func isEmptyJSON(raw []byte) bool {
	s := string(raw)
	return s == "" || s == "null" || s == `""`
}

func successCode(code string) bool {
	switch strings.TrimSpace(code) {
	case "", "00", "0000":
		return true
	}
	return false
}

func diagnostic(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxDiagnosticLen {
		s = strings.ToValidUTF8(s[:maxDiagnosticLen], "") + "..."
	}
	return s
}
