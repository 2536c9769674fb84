package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// encodeCmd はレコードを暗号化ペイロードに変換するコマンド。
// レコードJSONは--fileまたは標準入力から読み込む。
func encodeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a tag record into an encrypted payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}

			var recordJSON []byte
			var err error
			if file != "" {
				recordJSON, err = os.ReadFile(file)
			} else {
				recordJSON, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading record: %w", err)
			}

			var record json.RawMessage = recordJSON
			reqBody, err := json.Marshal(map[string]json.RawMessage{"record": record})
			if err != nil {
				return fmt.Errorf("building request: %w", err)
			}

			resp, err := httpClient.Post(apiURL+"/v1/tags/encode", "application/json", bytes.NewReader(reqBody))
			if err != nil {
				return fmt.Errorf("requesting encode: %w", err)
			}
			body, err := readBody(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("encode failed: %s", string(body))
			}

			return printResponse(body, func(data map[string]interface{}) {
				fmt.Printf("%v\n", data["payload"])
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Record JSON file (default: stdin)")
	return cmd
}

// decodeCmd は暗号化ペイロードをレコードに復元するコマンド。
func decodeCmd() *cobra.Command {
	var payload string
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a tag payload back into a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIURL(); err != nil {
				return err
			}
			if payload == "" {
				return fmt.Errorf("--payload is required")
			}

			reqBody, err := json.Marshal(map[string]string{"payload": payload})
			if err != nil {
				return fmt.Errorf("building request: %w", err)
			}

			resp, err := httpClient.Post(apiURL+"/v1/tags/decode", "application/json", bytes.NewReader(reqBody))
			if err != nil {
				return fmt.Errorf("requesting decode: %w", err)
			}
			body, err := readBody(resp)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("decode failed: %s", string(body))
			}

			return printResponse(body, func(data map[string]interface{}) {
				record, _ := json.MarshalIndent(data["record"], "", "  ")
				fmt.Println(string(record))
				fmt.Printf("provenance: %v\n", data["provenance"])
			})
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "", "Base64 tag payload")
	return cmd
}
