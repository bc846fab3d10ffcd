package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/extract"
	"github.com/revenue-cat-hackwit/recook-edge-function/core/payload"
	"github.com/revenue-cat-hackwit/recook-edge-function/core/structured"
	"github.com/revenue-cat-hackwit/recook-edge-function/internal/utils"
	"github.com/revenue-cat-hackwit/recook-edge-function/providers/observability"
	"github.com/revenue-cat-hackwit/recook-edge-function/providers/observability/slogobs"
	"github.com/revenue-cat-hackwit/recook-edge-function/providers/store/pgstore"
)

// errFailed makes Execute return non-nil after the failure envelope has
// already been printed.
var errFailed = errors.New("extraction failed")

// namedShapes maps --shape values to the payload descriptors.
var namedShapes = map[string]extract.Shape{
	"pantry":          payload.PantryItemsShape,
	"recipe":          payload.RecipeShape,
	"nutrition":       payload.NutritionShape,
	"meal-plan":       payload.MealPlanShape,
	"recommendations": payload.RecommendationsShape,
}

type envelope struct {
	Success bool          `json:"success"`
	Data    extract.Value `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Missing []string      `json:"missing,omitempty"`
	Snippet *string       `json:"snippet,omitempty"`
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RECOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "recook-extract [file]",
		Short: "Recover structured JSON from raw model output",
		Long: `Recover a JSON value of an expected shape from free text produced by a
language model. The text may be bare JSON, JSON inside a markdown code fence,
or JSON surrounded by prose.

Examples:
  recook-extract --shape recipe response.txt
  cat scan.txt | recook-extract --shape pantry --repair
  recook-extract --shape object --required foodName,calories < out.txt
  recook-extract --shape array --elem-required recipe_name --envelope plan plan.txt`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP("shape", "s", "object", "expected shape: pantry, recipe, nutrition, meal-plan, recommendations, object or array")
	flags.StringSlice("required", nil, "required keys for --shape object")
	flags.StringSlice("elem-required", nil, "required keys of each element for --shape array")
	flags.String("envelope", "", "key an array may be wrapped under, for --shape array")
	flags.Bool("repair", false, "repair malformed JSON spans before giving up")
	flags.Int("snippet-length", extract.DefaultSnippetLength, "runes of raw text kept in failure snippets")
	flags.String("task", "cli", "task name used in logs and the failure audit")
	flags.String("database-url", "", "PostgreSQL URL; when set, failures are recorded there")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.Bool("pretty", false, "indent the output")

	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shape, err := shapeFromConfig(v)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	observer := newObserver(cmd, v)
	task := v.GetString("task")

	opts := []extract.Option{extract.WithSnippetLength(v.GetInt("snippet-length"))}
	if v.GetBool("repair") {
		opts = append(opts, extract.WithRepair())
	}

	result := extract.Extract(raw, shape, opts...)
	out := cmd.OutOrStdout()
	pretty := v.GetBool("pretty")

	if result.OK() {
		observer.Debug(ctx, "extraction succeeded",
			observability.String(observability.AttrTask, task),
			observability.String(observability.AttrShapeKind, shape.Kind.String()),
		)
		_, err := fmt.Fprintln(out, utils.JSONToString(envelope{Success: true, Data: result.Value}, pretty))
		return err
	}

	f := result.Failure
	observer.Warn(ctx, "could not interpret response",
		observability.String(observability.AttrTask, task),
		observability.String(observability.AttrReason, f.Reason.String()),
		observability.String(observability.AttrSnippet, f.Snippet),
	)

	if url := v.GetString("database-url"); url != "" {
		if err := recordFailure(ctx, url, structured.FailureRecord{
			Task:     task,
			Shape:    shape.Kind,
			Reason:   f.Reason,
			Missing:  f.Missing,
			Snippet:  f.Snippet,
			Attempt:  1,
			Occurred: time.Now(),
		}); err != nil {
			observer.Error(ctx, "failed to record extraction failure", observability.Error(err))
		}
	}

	snippet := f.Snippet
	resp := envelope{
		Error:   structured.ErrUnreadable.Error(),
		Reason:  f.Reason.String(),
		Missing: f.Missing,
		Snippet: &snippet,
	}
	if _, err := fmt.Fprintln(out, utils.JSONToString(resp, pretty)); err != nil {
		return err
	}
	return fmt.Errorf("%w: %w", errFailed, f)
}

// shapeFromConfig resolves --shape and its ad-hoc modifiers into a valid
// descriptor. Invalid combinations are reported as errors rather than the
// panic Extract would raise.
func shapeFromConfig(v *viper.Viper) (extract.Shape, error) {
	name := strings.ToLower(strings.TrimSpace(v.GetString("shape")))
	if shape, ok := namedShapes[name]; ok {
		return shape, nil
	}

	var shape extract.Shape
	switch name {
	case "object":
		shape = extract.Object(v.GetStringSlice("required")...)
	case "array":
		shape = extract.Array()
		if elem := v.GetStringSlice("elem-required"); len(elem) > 0 {
			shape = extract.ArrayOf(extract.Object(elem...))
		}
	default:
		return extract.Shape{}, fmt.Errorf("unknown shape %q", name)
	}
	if key := v.GetString("envelope"); key != "" {
		shape = shape.InEnvelope(key)
	}
	if err := shape.Validate(); err != nil {
		return extract.Shape{}, fmt.Errorf("invalid shape: %w", err)
	}
	return shape, nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		r = file
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func newObserver(cmd *cobra.Command, v *viper.Viper) *slogobs.Observer {
	format := slogobs.FormatFromEnv()
	if s := v.GetString("log-format"); s != "" {
		format = slogobs.ParseFormat(s)
	}
	level := slogobs.LevelFromEnv()
	if s := v.GetString("log-level"); s != "" {
		level = slogobs.ParseLevel(s)
	}
	return slogobs.New(
		slogobs.WithFormat(format),
		slogobs.WithLevel(level),
		slogobs.WithOutput(cmd.ErrOrStderr()),
	)
}

func recordFailure(ctx context.Context, url string, record structured.FailureRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	store := pgstore.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.RecordFailure(ctx, record)
}
