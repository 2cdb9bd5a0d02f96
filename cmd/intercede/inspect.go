package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/intercede/manifest"
	"github.com/chazu/intercede/object"
	"github.com/chazu/intercede/policy"
	"github.com/chazu/intercede/proxy"
	"github.com/chazu/intercede/reflection"
	"github.com/chazu/intercede/snapshot"
)

// =============================================================================
// INSPECT COMMAND - run actions through a manifest policy
// =============================================================================

var inspectCmd = &cobra.Command{
	Use:   "inspect <policy> [action...]",
	Short: "Apply a policy to a sample object and run actions through it",
	Long: `Wraps a sample object in the named policy and runs each action through
the proxy, printing results and rejections, then the final state of the object
and its snapshot digest.

Actions:
  get:KEY          read a field
  set:KEY=VALUE    write a field (numbers and booleans are parsed)
  has:KEY          test for a field
  delete:KEY       delete a field

The sample defaults to a student record; replace it with --field KEY=VALUE.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

var (
	inspectFields []string
	inspectCBOR   bool
)

func init() {
	inspectCmd.Flags().StringArrayVarP(&inspectFields, "field", "f", nil, "Sample field KEY=VALUE (repeatable)")
	inspectCmd.Flags().BoolVar(&inspectCBOR, "cbor", false, "Also print the snapshot encoding as hex")
}

func runInspect(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	return inspect(cmd.OutOrStdout(), m, args[0], args[1:], inspectFields, inspectCBOR)
}

func inspect(w io.Writer, m *manifest.Manifest, name string, actions, fields []string, withCBOR bool) error {
	decl, err := m.Policy(name)
	if err != nil {
		return err
	}
	opts, err := decl.Options(nil)
	if err != nil {
		return err
	}

	target, err := sampleObject(fields)
	if err != nil {
		return err
	}
	p, err := policy.Wrap(target, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "proxy %s over %s\n", p.ID(), object.Format(target))

	for _, a := range actions {
		result, err := runAction(p, a)
		var pe *object.PolicyError
		switch {
		case errors.As(err, &pe):
			fmt.Fprintf(w, "%-20s rejected: %s\n", a, pe.Reason)
		case err != nil:
			return fmt.Errorf("action %s: %w", a, err)
		default:
			fmt.Fprintf(w, "%-20s %s\n", a, object.Format(result))
		}
	}

	fmt.Fprintf(w, "target %s\n", object.Format(target))
	digest, err := snapshot.Digest(target)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "digest %s\n", hex.EncodeToString(digest[:]))
	if withCBOR {
		data, err := snapshot.Marshal(target)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "cbor   %s\n", hex.EncodeToString(data))
	}
	return nil
}

func runAction(p *proxy.Proxy, action string) (object.Value, error) {
	verb, arg, ok := strings.Cut(action, ":")
	if !ok || arg == "" {
		return nil, fmt.Errorf("malformed action %q", action)
	}
	switch verb {
	case "get":
		return reflection.Get(p, arg)
	case "has":
		return reflection.Has(p, arg)
	case "delete":
		return reflection.DeleteField(p, arg)
	case "set":
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("set needs KEY=VALUE, got %q", arg)
		}
		return reflection.Set(p, key, parseValue(raw))
	}
	return nil, fmt.Errorf("unknown action %q", verb)
}

func sampleObject(fields []string) (*object.Object, error) {
	if len(fields) == 0 {
		return object.New(nil).
			Put("id", 1).
			Put("name", "zhangsan").
			Put("grade", "一年级").
			Put("subject", "语文").
			Put("_score", 95), nil
	}
	o := object.New(nil)
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("field needs KEY=VALUE, got %q", f)
		}
		o.Put(k, parseValue(v))
	}
	return o, nil
}

func parseValue(s string) object.Value {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
