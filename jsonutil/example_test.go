package jsonutil_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ssl/cleanshot-cloud/jsonutil"
)

func Example() {
	type media struct {
		ID          int64  `json:"id"`
		FullURL     string `json:"full_url"`
		DownloadURL string `json:"download_url"`
	}

	payload := media{
		ID:          7,
		FullURL:     "https://shots.example.com/abc",
		DownloadURL: "https://shots.example.com/abc",
	}

	data, _ := jsonutil.Marshal(payload)
	fmt.Println(string(data))

	var decoded media
	_ = jsonutil.Unmarshal(data, &decoded)
	fmt.Println(decoded.ID)

	buf := &bytes.Buffer{}
	_ = jsonutil.Encode(buf, payload)

	var streamed media
	_ = jsonutil.Decode(buf, &streamed)
	fmt.Println(streamed.FullURL)

	// Output:
	// {"id":7,"full_url":"https://shots.example.com/abc","download_url":"https://shots.example.com/abc"}
	// 7
	// https://shots.example.com/abc
}

func ExampleMarshalIndent() {
	type user struct {
		Email string   `json:"email"`
		Teams []string `json:"teams"`
	}

	data, err := jsonutil.MarshalIndent(user{Email: "me@example.com", Teams: []string{"design", "ops"}}, "", "  ")
	if err != nil {
		fmt.Println("marshal error:", err)
		return
	}

	fmt.Println(strings.TrimSpace(string(data)))

	// Output:
	// {
	//   "email": "me@example.com",
	//   "teams": [
	//     "design",
	//     "ops"
	//   ]
	// }
}

func ExampleMarshal_sortedKeys() {
	data, _ := jsonutil.Marshal(map[string]any{"error": "Not Found", "code": 404})
	fmt.Println(string(data))

	// Output:
	// {"code":404,"error":"Not Found"}
}
