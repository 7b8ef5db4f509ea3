package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// PredictCLI reads lines from stdin and prints the server's next word
// for each one.
func PredictCLI(serverURL string) {
	client := &http.Client{Timeout: 10 * time.Second}
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("PredictCLI connected. Type 'exit' to quit.")
	for {
		fmt.Print("You: ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "exit" || (err != nil && input == "") {
			break
		}

		word, err := requestNextWord(client, serverURL, input)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("Next: %s\n", word)
	}
}

func requestNextWord(client *http.Client, serverURL, text string) (string, error) {
	target := strings.TrimRight(serverURL, "/") + "/predict_next_word?" +
		url.Values{"input_text": {text}}.Encode()
	resp, err := client.Get(target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var result struct {
		PredictedWord string `json:"predicted_word"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.PredictedWord, nil
}
