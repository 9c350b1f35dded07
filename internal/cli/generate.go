package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
)

// plan is the JSON input accepted by the generate command.
type plan struct {
	Options    json.RawMessage       `json:"options"`
	Candidates []scheduler.Candidate `json:"candidates"`
	Existing   []scheduler.Placement `json:"existing"`
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		input   string
		variant string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Place the candidates of a plan file on the weekly grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger()
			defer log.Sync() //nolint:errcheck

			v, err := parseVariant(variant)
			if err != nil {
				return err
			}
			p, opts, err := readPlan(input, v)
			if err != nil {
				return err
			}

			store := scheduler.StoreFunc(memoryStore)
			start := time.Now()
			result, err := scheduler.Generate(cmd.Context(), p.Candidates, p.Existing, opts, store)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			log.Info("generation finished",
				zap.String("variant", string(opts.Variant)),
				zap.Int("candidates", len(p.Candidates)),
				zap.Int("placed", len(result.Committed)),
				zap.Int("unplaced", len(result.Unplaced)),
				zap.Duration("duration", time.Since(start)),
			)

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				_ = closeOut()
				return fmt.Errorf("write result: %w", err)
			}
			return closeOut()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "plan file with options, candidates and existing placements")
	cmd.Flags().StringVar(&variant, "variant", "section", "section or exam")
	cmd.Flags().StringVarP(&output, "out", "o", "", "result file (stdout when empty)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func memoryStore(_ context.Context, _ scheduler.Placement) (string, error) {
	return uuid.NewString(), nil
}

func parseVariant(raw string) (scheduler.Variant, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "section", "sections":
		return scheduler.VariantSection, nil
	case "exam", "exams":
		return scheduler.VariantExam, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want section or exam)", raw)
	}
}

// readPlan decodes the plan and layers its options over the variant defaults.
func readPlan(path string, variant scheduler.Variant) (*plan, scheduler.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, scheduler.Options{}, fmt.Errorf("read plan: %w", err)
	}
	var p plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, scheduler.Options{}, fmt.Errorf("decode plan: %w", err)
	}

	opts := scheduler.DefaultOptions(variant)
	if trimmed := bytes.TrimSpace(p.Options); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &opts); err != nil {
			return nil, scheduler.Options{}, fmt.Errorf("decode plan options: %w", err)
		}
	}
	opts.Variant = variant
	if opts.PeriodEnd < opts.PeriodStart {
		return nil, scheduler.Options{}, fmt.Errorf("periodEnd %d is before periodStart %d", opts.PeriodEnd, opts.PeriodStart)
	}
	return &p, opts, nil
}
