package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Question mirrors the body accepted by POST /api/rooms/{code}/questions.
type Question struct {
	Text      string   `yaml:"text" json:"text"`
	Options   []string `yaml:"options" json:"options"`
	Correct   int      `yaml:"correct" json:"correct"`
	TimeLimit int      `yaml:"time_limit" json:"time_limit"`
}

// Pack is the YAML file shape.
type Pack struct {
	Questions []Question `yaml:"questions"`
}

type apiReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Trivion Question Pack Seeder")
		fmt.Println("============================")
		fmt.Println()
		fmt.Println("Usage: go run seed_questions.go <room-code> <pack.yaml> [server-url]")
		fmt.Println()
		fmt.Println("Loads a YAML question pack into a lobby room through the REST API.")
		fmt.Println("The default server is http://localhost:8000.")
		os.Exit(1)
	}

	code := strings.ToUpper(os.Args[1])
	packPath := os.Args[2]
	server := "http://localhost:8000"
	if len(os.Args) > 3 {
		server = strings.TrimRight(os.Args[3], "/")
	}

	data, err := os.ReadFile(packPath)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", packPath, err)
		os.Exit(1)
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		fmt.Printf("Error parsing %s: %v\n", packPath, err)
		os.Exit(1)
	}
	if len(pack.Questions) == 0 {
		fmt.Printf("No questions found in %s\n", packPath)
		os.Exit(1)
	}

	fmt.Printf("Seeding %d questions into room %s at %s\n\n", len(pack.Questions), code, server)

	client := &http.Client{Timeout: 10 * time.Second}
	endpoint := fmt.Sprintf("%s/api/rooms/%s/questions", server, code)

	seeded := 0
	for i, q := range pack.Questions {
		body, err := json.Marshal(q)
		if err != nil {
			fmt.Printf("Error encoding question %d: %v\n", i+1, err)
			continue
		}

		resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Error sending question %d: %v\n", i+1, err)
			os.Exit(1)
		}

		var reply apiReply
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			fmt.Printf("Error reading reply for question %d: %v\n", i+1, err)
			resp.Body.Close()
			os.Exit(1)
		}
		resp.Body.Close()

		if reply.Status != "ok" {
			fmt.Printf("Question %d rejected: %s\n", i+1, reply.Message)
			continue
		}
		seeded++
		fmt.Printf("Added question %d/%d (bank now holds %d)\n", i+1, len(pack.Questions), reply.Count)
	}

	fmt.Printf("\nDone: %d of %d questions seeded into %s\n", seeded, len(pack.Questions), code)
}
