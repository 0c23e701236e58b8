package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// jsonText renders one query result: strings as their bare text,
// everything else as compact JSON.
func jsonText(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func buildConversionLib() {

	features["conversion"] = Feature{version: 1, category: "data"}
	categories["conversion"] = []string{"JQ", "JsonFormat", "YamlToJson"}

	register("JQ", 2, 2, LibHelp{in: "json_string,query", out: "string",
		action: "Runs the jq [#i1]query[#i0] over [#i1]json_string[#i0] using the gojq library.\n" +
			"Each result is placed on its own line; string results are not quoted."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			q, err := gojq.Parse(in.argText(args[1]))
			if err != nil {
				return errors.New("invalid query string in JQ()")
			}
			var iv any
			dec := json.NewDecoder(strings.NewReader(in.argText(args[0])))
			if err := dec.Decode(&iv); err != nil {
				return errors.New("could not convert JSON in JQ()")
			}

			var out strings.Builder
			iter := q.Run(iv)
			for {
				v, ok := iter.Next()
				if !ok {
					break
				}
				if err, ok := v.(error); ok {
					return err
				}
				s, err := jsonText(v)
				if err != nil {
					return err
				}
				if out.Len() > 0 {
					out.WriteByte('\n')
				}
				out.WriteString(s)
			}
			result.returnString(out.String())
			return nil
		})

	register("JsonFormat", 1, 2, LibHelp{in: "json_string[,indent]", out: "string",
		action: "Re-indents [#i1]json_string[#i0], by default with two spaces. An empty indent gives compact output."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			indent := "  "
			if len(args) == 2 {
				indent = in.argText(args[1])
			}
			src := []byte(in.argText(args[0]))
			var buf bytes.Buffer
			var err error
			if indent == "" {
				err = json.Compact(&buf, src)
			} else {
				err = json.Indent(&buf, src, "", indent)
			}
			if err != nil {
				return errors.New("could not convert JSON in JsonFormat()")
			}
			result.returnString(buf.String())
			return nil
		})

	register("YamlToJson", 1, 1, LibHelp{in: "yaml_string", out: "string", action: "Converts a YAML document to compact JSON."},
		func(in *Interp, result *ExprToken, args []*ExprToken) error {
			var v any
			if err := yaml.Unmarshal([]byte(in.argText(args[0])), &v); err != nil {
				return errors.New("could not parse YAML in YamlToJson()")
			}
			b, err := json.Marshal(v)
			if err != nil {
				return errors.New("YAML document has no JSON form")
			}
			result.returnString(string(b))
			return nil
		})
}
