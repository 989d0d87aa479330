// Copyright (c) 2024 the mandos authors

package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/vmscenario/mandos/mandos"
)

var yamlExts = map[string]struct{}{
	".yml":  {},
	".yaml": {},
}

// readScenarioJSON loads scenarioPath and, if it has a YAML extension,
// transcodes it to JSON first; mandos.ParseScenario only ever sees JSON.
func readScenarioJSON(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if _, isYAML := yamlExts[filepath.Ext(path)]; !isYAML {
		return buf, nil
	}
	var doc any
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse yaml in %s", path)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to transcode %s to json", path)
	}
	return out, nil
}

func newContext() *mandos.InterpreterContext {
	return &mandos.InterpreterContext{
		Files: func(path string) ([]byte, error) {
			return os.ReadFile(path)
		},
		Hash: func(data []byte) []byte {
			h := sha3.NewLegacyKeccak256()
			h.Write(data)
			return h.Sum(nil)
		},
	}
}

func runCommand() error {
	data, err := readScenarioJSON(scenarioPath)
	if err != nil {
		return err
	}

	raw, err := mandos.ParseScenario(data)
	if err != nil {
		return errors.Wrapf(err, "failed to parse %s", scenarioPath)
	}

	ctx := newContext()
	scenario, err := mandos.Lower(raw, ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to lower %s", scenarioPath)
	}
	log.Infof("lowered %s: %d steps", scenarioPath, len(scenario.Steps))

	switch subcommand {
	case "validate":
		for i, st := range scenario.Steps {
			log.Debugf("step %d: %s", i, strcase.ToDelimited(st.Kind.String(), ' '))
		}
		return nil
	case "dump":
		return dumpScenario(scenario)
	default:
		return errors.Errorf("unknown subcommand %q", subcommand)
	}
}

func dumpScenario(scenario *mandos.Scenario) error {
	doc := mandos.Serialize(scenario)

	pretty := prettyFlag
	var w = os.Stdout
	if outFlag == "" && !prettyFlag {
		pretty = term.IsTerminal(int(os.Stdout.Fd()))
	}

	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario")
	}
	out = append(out, '\n')

	if outFlag == "" {
		_, err = w.Write(out)
		return err
	}
	return os.WriteFile(outFlag, out, 0o644)
}
