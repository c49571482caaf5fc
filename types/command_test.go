package types

import "testing"

func TestCommand_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"code command", ExecuteCode("print(1)", "ok"), false},
		{"file command", ExecuteFile("/scenes/x.py", ""), false},
		{"empty payload", Command{Kind: KindExecuteCode}, true},
		{"unknown kind", Command{Kind: "reboot", Payload: "x"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCommand_Describe(t *testing.T) {
	if got := ExecuteCode("x", "Scene Clearing").Describe(); got != "Scene Clearing" {
		t.Errorf("Describe() = %q, want label", got)
	}
	if got := ExecuteCode("x", "").Describe(); got != "execute_code" {
		t.Errorf("Describe() = %q, want kind fallback", got)
	}
}

func TestResponse_ResultText(t *testing.T) {
	cases := []struct {
		name   string
		result string
		want   string
	}{
		{"absent", "", ""},
		{"json string", `"plain text"`, "plain text"},
		{"json object", `{"count":3}`, `{"count":3}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := Response{Status: StatusSuccess, Result: []byte(tc.result)}
			if tc.result == "" {
				resp.Result = nil
			}
			if got := resp.ResultText(); got != tc.want {
				t.Errorf("ResultText() = %q, want %q", got, tc.want)
			}
		})
	}
}
