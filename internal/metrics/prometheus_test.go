package metrics

import "testing"

func TestClassifyStatus(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 401: "4xx", 502: "5xx", 0: "error", 99: "unknown"}
	for code, want := range cases {
		if got := ClassifyStatus(code); got != want {
			t.Errorf("ClassifyStatus(%d) = %q, want %q", code, got, want)
		}
	}
}
