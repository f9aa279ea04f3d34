package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"github.com/abdul-hamid-achik/urlmock/packages/dispatch"
	"github.com/abdul-hamid-achik/urlmock/packages/http"
	"github.com/abdul-hamid-achik/urlmock/packages/output"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	requestParamsFlag    []string
	requestAuthFlag      bool
	requestReplayFlag    bool
	requestFailFlag      bool
	requestNoCaptureFlag bool
	requestQueryFlag     string
	requestTimeoutFlag   string
	requestOutputFlag    string
	requestVerboseFlag   bool
	requestProxyFlag     string
	requestInsecureFlag  bool
	requestNoFollowFlag  bool
	requestMaxRedirects  int
)

var requestCmd = &cobra.Command{
	Use:   "request METHOD ENDPOINT",
	Short: "Dispatch one call",
	Long: `Dispatch one call to ENDPOINT under the configured base URL.

METHOD is one of GET, POST, PUT, PATCH, DELETE or FORM. GET and PATCH send
parameters in the query string, FORM sends them url-encoded, the rest send
a JSON body. Repeating a parameter key sends a list.

Live responses are stored as fixtures unless --no-capture is given.
--replay answers from the stored fixture instead of the network, and
--fail answers with a synthetic 400 (it wins over --replay).

Examples:
  urlmock request GET /users/1 --base-url https://api.example.com
  urlmock request GET /search -p q=go -p tag=a -p tag=b
  urlmock request POST /users -p name=Ada -p admin=true --auth
  urlmock request GET /users/1 --replay --query name
  urlmock request GET /login --no-follow`,
	Args: cobra.ExactArgs(2),
	RunE: requestCommand,
}

func init() {
	requestCmd.Flags().StringArrayVarP(&requestParamsFlag, "param", "p", nil, "Parameter as key=value (repeatable)")
	requestCmd.Flags().BoolVar(&requestAuthFlag, "auth", false, "Send the configured token as a Bearer Authorization header")
	requestCmd.Flags().BoolVar(&requestReplayFlag, "replay", getEnvBool("URLMOCK_REPLAY", false), "Answer from the stored fixture (env: URLMOCK_REPLAY)")
	requestCmd.Flags().BoolVar(&requestFailFlag, "fail", getEnvBool("URLMOCK_FAIL", false), "Answer with a synthetic failure (env: URLMOCK_FAIL)")
	requestCmd.Flags().BoolVar(&requestNoCaptureFlag, "no-capture", false, "Do not store the live response as a fixture")
	requestCmd.Flags().StringVarP(&requestQueryFlag, "query", "q", "", "Print only the value at this gjson path")
	requestCmd.Flags().StringVar(&requestTimeoutFlag, "timeout", "", "Request timeout (e.g., 5s, 500ms)")
	requestCmd.Flags().StringVarP(&requestOutputFlag, "output", "o", "console", "Output format: console, json")
	requestCmd.Flags().BoolVarP(&requestVerboseFlag, "verbose", "v", false, "Verbose output")
	requestCmd.Flags().StringVar(&requestProxyFlag, "proxy", getEnvString("URLMOCK_PROXY", ""), "Proxy URL for HTTP requests (env: URLMOCK_PROXY)")
	requestCmd.Flags().BoolVarP(&requestInsecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	requestCmd.Flags().BoolVar(&requestNoFollowFlag, "no-follow", false, "Do not follow redirects")
	requestCmd.Flags().IntVar(&requestMaxRedirects, "max-redirects", 0, fmt.Sprintf("Maximum redirects to follow (default %d)", http.DefaultMaxRedirects))
}

// parseParams turns key=value pairs into Params. Repeated keys become lists.
func parseParams(pairs []string) (http.Params, error) {
	params := make(http.Params)
	multi := make(map[string][]http.Value)
	order := make([]string, 0, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", pair)
		}
		if _, seen := multi[key]; !seen {
			order = append(order, key)
		}
		multi[key] = append(multi[key], http.ParseValue(value))
	}

	for _, key := range order {
		values := multi[key]
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = http.List(values...)
		}
	}
	return params, nil
}

// requestOverrides maps the request flags onto a config layer
func requestOverrides() (*config.Config, error) {
	overrides := &config.Config{}
	if requestReplayFlag {
		overrides.ForceReplay = config.BoolPtr(true)
	}
	if requestFailFlag {
		overrides.ForceFailure = config.BoolPtr(true)
	}
	if requestNoCaptureFlag {
		overrides.Mock = config.BoolPtr(false)
	}
	if requestNoFollowFlag {
		overrides.FollowRedirects = config.BoolPtr(false)
	}
	if requestMaxRedirects < 0 {
		return nil, fmt.Errorf("invalid max redirects %d", requestMaxRedirects)
	}
	overrides.MaxRedirects = requestMaxRedirects
	if requestTimeoutFlag != "" {
		d, err := time.ParseDuration(requestTimeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", requestTimeoutFlag, err)
		}
		overrides.Timeout = int(d.Milliseconds())
	}
	return overrides, nil
}

func mode(rc config.RuntimeConfig) string {
	switch {
	case rc.ForceFailure:
		return "fail"
	case rc.ForceReplay:
		return "replay"
	default:
		return "live"
	}
}

func requestCommand(cmd *cobra.Command, args []string) error {
	method, err := http.ParseMethod(args[0])
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	params, err := parseParams(requestParamsFlag)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	overrides, err := requestOverrides()
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg.Merge(overrides)
	runtimeCfg := cfg.Runtime()

	clientOpts := []http.ClientOption{
		http.WithRateLimit(cfg.RateLimit),
		http.WithProxy(requestProxyFlag),
		http.WithValidateSSL(!requestInsecureFlag),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithLogger(rt.logger),
	}
	if cfg.MaxRedirects > 0 {
		clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	transport := http.NewClient(clientOpts...)
	session := dispatch.NewSession(runtimeCfg, rt.store,
		dispatch.WithTransport(transport),
		dispatch.WithLogger(rt.logger),
	)
	defer session.Close()

	start := time.Now()
	res := dispatch.Do[string](cmd.Context(), session, dispatch.Call{
		Method:        method,
		Endpoint:      args[1],
		Params:        params,
		Authenticated: requestAuthFlag,
	})

	body := res.Value
	if res.OK && requestQueryFlag != "" {
		selected := gjson.Get(body, requestQueryFlag)
		if !selected.Exists() {
			return withExitCode(ExitFailure, fmt.Errorf("no value at %q", requestQueryFlag))
		}
		body = selected.Raw
		if selected.Type == gjson.String {
			body = selected.String()
		}
	}

	formatter := output.New(requestOutputFlag, cmd.OutOrStdout(), requestVerboseFlag, cfg.GetNoColor())
	formatter.FormatResult(output.Result{
		Method:   string(method),
		Endpoint: args[1],
		Mode:     mode(runtimeCfg),
		Code:     res.Code,
		OK:       res.OK,
		Body:     body,
		Err:      res.Err,
		Duration: time.Since(start),
	})

	switch {
	case errors.Is(res.Err, dispatch.ErrTransport):
		return withExitCode(ExitNetworkError, nil)
	case errors.Is(res.Err, http.ErrInvalidURL):
		return withExitCode(ExitConfigError, nil)
	case !res.OK:
		return withExitCode(ExitFailure, nil)
	}
	return nil
}
