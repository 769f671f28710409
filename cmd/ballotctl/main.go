package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		apiBaseURL string
		adminKey   string
	)

	cmd := &cobra.Command{
		Use:           "ballotctl",
		Short:         "Utility for administering a ballotd election",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&apiBaseURL, "api", "http://localhost:8080", "Base URL of the ballotd API")
	cmd.PersistentFlags().StringVar(&adminKey, "key", os.Getenv("ADMIN_KEY"), "Admin key used to obtain a session token")

	client := &adminClient{base: &apiBaseURL, key: &adminKey}

	cmd.AddCommand(newRosterCommand(client))
	cmd.AddCommand(newElectionCommand(client))
	cmd.AddCommand(newResultsCommand(client))
	cmd.AddCommand(newLettersCommand(client))
	return cmd
}

func newRosterCommand(c *adminClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Voter roster operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		file     string
		detailed bool
	)

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a voter roster from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			path := "/v1/admin/voters/import"
			if detailed {
				path += "?format=detailed"
			}
			return c.callBody(commandContext(cmd), http.MethodPost, path, "text/csv", f)
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "Path to the roster CSV")
	importCmd.Flags().BoolVar(&detailed, "detailed", false, "Treat the file as a detailed spreadsheet export")
	_ = importCmd.MarkFlagRequired("file")

	var voted string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List voters",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/v1/admin/voters/"
			if voted != "" {
				path += "?voted=" + voted
			}
			return c.call(commandContext(cmd), http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().StringVar(&voted, "voted", "", "Filter by voted status (true or false)")

	cmd.AddCommand(importCmd)
	cmd.AddCommand(listCmd)
	return cmd
}

func newElectionCommand(c *adminClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "election",
		Short: "Election lifecycle operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var days int

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Open the election for voting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.callJSON(commandContext(cmd), http.MethodPost, "/v1/admin/election/start",
				map[string]any{"voting_period_days": days})
		},
	}
	startCmd.Flags().IntVar(&days, "days", 0, "Voting period in days (server default when omitted)")

	var extendDays int
	extendCmd := &cobra.Command{
		Use:   "extend",
		Short: "Extend the voting period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.callJSON(commandContext(cmd), http.MethodPost, "/v1/admin/election/extend",
				map[string]any{"voting_period_days": extendDays})
		},
	}
	extendCmd.Flags().IntVar(&extendDays, "days", 0, "New voting period in days (must exceed the current period)")
	_ = extendCmd.MarkFlagRequired("days")

	cmd.AddCommand(startCmd)
	cmd.AddCommand(extendCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Close the election",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.callJSON(commandContext(cmd), http.MethodPost, "/v1/admin/election/end", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show election settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(commandContext(cmd), http.MethodGet, "/v1/admin/election/", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "regenerate-codes",
		Short: "Issue fresh election codes to voters who have not voted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.callJSON(commandContext(cmd), http.MethodPost, "/v1/admin/election/regenerate-codes", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Wipe all ballots and reset voter statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.callJSON(commandContext(cmd), http.MethodPost, "/v1/admin/election/reset", nil)
		},
	})
	return cmd
}

func newResultsCommand(c *adminClient) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show the current tally and turnout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(commandContext(cmd), http.MethodGet, "/v1/admin/results", nil)
		},
	}
}

func newLettersCommand(c *adminClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "letters",
		Short: "Voter letter operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		template string
		code     string
	)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a letter for a voter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.callJSON(commandContext(cmd), http.MethodPost, "/v1/admin/letters/render",
				map[string]any{"template": template, "election_code": code})
		},
	}
	renderCmd.Flags().StringVar(&template, "template", "", "Letter template name")
	renderCmd.Flags().StringVar(&code, "code", "", "Election code of the voter")
	_ = renderCmd.MarkFlagRequired("template")
	_ = renderCmd.MarkFlagRequired("code")

	cmd.AddCommand(renderCmd)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// adminClient logs in once with the admin key and reuses the issued
// token for subsequent requests.
type adminClient struct {
	base  *string
	key   *string
	token string
	http  http.Client
}

func (c *adminClient) login(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	if *c.key == "" {
		return fmt.Errorf("admin key is required (set --key or ADMIN_KEY)")
	}

	body, _ := json.Marshal(map[string]string{"key": *c.key})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *c.base+"/v1/admin/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", resp.Status)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

func (c *adminClient) callJSON(ctx context.Context, method, path string, payload map[string]any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader([]byte("{}"))
	}
	return c.callBody(ctx, method, path, "application/json", body)
}

func (c *adminClient) call(ctx context.Context, method, path string, body io.Reader) error {
	return c.callBody(ctx, method, path, "application/json", body)
}

func (c *adminClient) callBody(ctx context.Context, method, path, contentType string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := c.login(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, *c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(data))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
