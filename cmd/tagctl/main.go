// Package main はCLIツールのエントリポイント。
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	apiURL  string
	output  string
	timeout time.Duration
)

// HTTPクライアント
var httpClient *http.Client

func main() {
	rootCmd := &cobra.Command{
		Use:   "tagctl",
		Short: "Tag Encryption Service CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiURL == "" {
				apiURL = os.Getenv("TAGCTL_API_URL")
			}
			httpClient = &http.Client{Timeout: timeout}
		},
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API endpoint URL (or set TAGCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// サブコマンド登録
	rootCmd.AddCommand(encodeCmd())
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// requireAPIURL はAPIエンドポイントの指定を検証する。
func requireAPIURL() error {
	if apiURL == "" {
		return fmt.Errorf("--api-url is required (or set TAGCTL_API_URL)")
	}
	return nil
}

// readBody はレスポンスボディを読み取って閉じる。
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// printResponse は出力フォーマットに応じてレスポンスを表示する。
func printResponse(body []byte, textFn func(map[string]interface{})) error {
	if output == "json" {
		fmt.Println(string(body))
		return nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	textFn(data)
	return nil
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tagctl version %s\n", version)
		},
	}
}

// statusCmd は保存時暗号化の準備状態を表示するコマンド。
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage encryption readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			resp, err := httpClient.Get(apiURL + "/v1/protection/status")
			if err != nil {
				return fmt.Errorf("requesting status: %w", err)
			}
			body, err := readBody(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status request failed: %s", string(body))
			}

			return printResponse(body, func(data map[string]interface{}) {
				fmt.Printf("status: %v\n", data["status"])
				if reason, ok := data["reason"]; ok && reason != "" {
					fmt.Printf("reason: %v\n", reason)
				}
			})
		},
	}
}

// migrateCmd はストレージ鍵を作成して保存時暗号化を準備するコマンド。
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Prepare storage encryption (creates the storage key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			resp, err := httpClient.Post(apiURL+"/v1/protection/migrate", "application/json", nil)
			if err != nil {
				return fmt.Errorf("requesting migration: %w", err)
			}
			body, err := readBody(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("migration failed: %s", string(body))
			}

			return printResponse(body, func(data map[string]interface{}) {
				fmt.Printf("status: %v\n", data["status"])
			})
		},
	}
}
