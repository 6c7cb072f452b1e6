package handlers

import "net/url"

// parseFormBody turns a URL-encoded body into the same loose payload
// shape a JSON body produces. Repeated keys keep the first value.
func parseFormBody(body string) (map[string]interface{}, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	payload := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			payload[key] = vals[0]
		}
	}
	return payload, nil
}
