package apiclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/apiclient"
	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/config"
)

func ExampleNew() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"msg":"hello"}`)
	}))
	defer ts.Close()

	c, err := apiclient.New(ts.URL, "Bearer token", client.NewAPIError, client.WithTimeout(5*time.Second))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}
	defer c.Close()

	resp, err := client.Get[struct{ Msg string }](context.Background(), c, "greeting")
	if err != nil {
		fmt.Println("get error:", err)
		return
	}

	fmt.Println(resp.Msg)
	// Output: hello
}

func ExampleNewFromConfig() {
	cfg := config.Config{
		BaseURL: "https://api.example.com/v2",
		Timeout: 10 * time.Second,
	}

	c, err := apiclient.NewFromConfig(cfg, client.NewAPIError)
	if err != nil {
		fmt.Println("build error:", err)
		return
	}
	defer c.Close()

	fmt.Println(c.BaseURL())
	// Output: https://api.example.com/v2/
}
