package chunk

import (
	"bytes"
	"encoding/json"
	"path/filepath"
)

// packageJSONKeys are the package.json sections worth indexing on their
// own; everything else in that file (author, license, etc.) is noise for
// search purposes.
var packageJSONKeys = []string{"name", "version", "scripts", "dependencies", "devDependencies"}

// ChunkJSON chunks a JSON file. package.json gets the five keys in
// packageJSONKeys as individual chunks; any other JSON object is chunked
// one top-level key at a time, in the file's own key order. Malformed JSON
// falls back to a single truncated raw chunk.
func ChunkJSON(content, path string) []Chunk {
	fname := filepath.Base(path)

	keys, values, err := orderedTopLevelObject(content)
	if err != nil {
		return []Chunk{{SectionTitle: fname, Content: truncate(content, MaxChars), ChunkIndex: 0}}
	}
	if keys == nil {
		// Valid JSON but not a top-level object (array, scalar, etc).
		return []Chunk{{SectionTitle: fname, Content: truncate(content, MaxChars), ChunkIndex: 0}}
	}

	var chunks []Chunk
	if fname == "package.json" {
		for _, key := range packageJSONKeys {
			raw, ok := values[key]
			if !ok {
				continue
			}
			chunks = append(chunks, Chunk{
				SectionTitle: fname + " — " + key,
				Content:      truncate(renderJSONValue(raw), MaxChars),
				ChunkIndex:   len(chunks),
			})
		}
	} else {
		for _, key := range keys {
			chunks = append(chunks, Chunk{
				SectionTitle: fname + " — " + key,
				Content:      truncate(renderJSONValue(values[key]), MaxChars),
				ChunkIndex:   len(chunks),
			})
		}
	}

	if len(chunks) == 0 {
		return []Chunk{{SectionTitle: fname, Content: truncate(content, MaxChars), ChunkIndex: 0}}
	}
	return chunks
}

// orderedTopLevelObject decodes content's top-level JSON object, returning
// its keys in source order alongside each key's raw value. Returns
// keys == nil (no error) if content's root is not an object.
func orderedTopLevelObject(content string) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		// Still validate the rest parses as JSON.
		var probe interface{}
		if err := json.Unmarshal([]byte(content), &probe); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	return keys, values, nil
}

// renderJSONValue mirrors json.dumps(val, indent=2) for objects/arrays and
// str(val) for scalars.
func renderJSONValue(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch val := v.(type) {
	case map[string]interface{}, []interface{}:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return string(raw)
		}
		return buf.String()
	case string:
		return val
	case nil:
		return ""
	default:
		return string(raw)
	}
}
