package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"marketpush/internal/app"
	"marketpush/internal/domain"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify candidate messages from a JSON request",
	Long: `Reads a verify request (the body of POST /api/verify) and prints one result
per candidate, in input order.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

type verifyFile struct {
	UserID      string             `json:"userId"`
	Market      string             `json:"market"`
	Now         time.Time          `json:"now"`
	Channel     domain.Channel     `json:"channel"`
	Locale      string             `json:"locale"`
	Constraints domain.Constraints `json:"constraints"`
	Candidates  []domain.Candidate `json:"candidates"`
}

func readVerifyFile(path string, stdin io.Reader) (verifyFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return verifyFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	var req verifyFile
	if err := json.Unmarshal(data, &req); err != nil {
		return verifyFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if !req.Channel.IsValid() {
		return verifyFile{}, domain.NewValidationError("channel", "must be PUSH or EMAIL")
	}
	return req, nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	req, err := readVerifyFile(verifyIn, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		results := a.Verifier.Verify(ctx, req.Candidates, domain.VerifyContext{
			UserID:      req.UserID,
			Market:      req.Market,
			Now:         req.Now,
			Channel:     req.Channel,
			Locale:      req.Locale,
			Constraints: req.Constraints,
		})
		return printJSON(cmd.OutOrStdout(), map[string]any{"results": results})
	})
}
