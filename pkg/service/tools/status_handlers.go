package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

func handleCheckServiceStatus(ctx context.Context, s *Service, raw json.RawMessage) (string, map[string]interface{}, error) {
	var args checkServiceStatusArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	if err := args.validate(s.cfg); err != nil {
		return "", nil, err
	}
	params := map[string]interface{}{
		"service":         args.Service,
		"include_history": args.IncludeHistory,
		"days":            args.Days,
	}

	status, err := s.status.Check(ctx, args.Service, args.IncludeHistory, args.Days)
	if err != nil {
		// Not-found errors carry the candidate-page suggestions.
		return friendly(err), params, err
	}

	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Sprintf("Service health check failed for %s: %s", args.Service, err), params, err
	}
	return fmt.Sprintf("%s %s\n\n%s", status.Status.Emoji(), status.Service, out), params, nil
}
