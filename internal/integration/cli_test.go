//go:build integration

package integration

import (
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	_ "modernc.org/sqlite"
)

var (
	cliOnce sync.Once
	cliBin  string
	cliErr  error
)

func buildCLIBinary() (string, error) {
	cliOnce.Do(func() {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			cliErr = fmt.Errorf("cannot determine source path")
			return
		}
		root := filepath.Join(filepath.Dir(file), "../..")
		dir, err := os.MkdirTemp("", "linq-int-*")
		if err != nil {
			cliErr = fmt.Errorf("mktemp: %w", err)
			return
		}
		bin := filepath.Join(dir, "linq")
		cmd := exec.Command("go", "build", "-o", bin, "./cmd/linq")
		cmd.Dir = root
		out, err := cmd.CombinedOutput()
		if err != nil {
			cliErr = fmt.Errorf("build linq: %w: %s", err, out)
			return
		}
		cliBin = bin
	})
	return cliBin, cliErr
}

// cliRun executes linq with args and optional stdin. Returns stdout, stderr, exit code.
func cliRun(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	bin, err := buildCLIBinary()
	if err != nil {
		t.Fatalf("build cli: %v", err)
	}
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), "LINQ_CONFIG=", "LINQ_FORMAT=")
	cmd.Dir = t.TempDir()
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	code := 0
	if runErr != nil {
		ee, ok := runErr.(*exec.ExitError)
		if !ok {
			t.Fatalf("exec linq: %v", runErr)
		}
		code = ee.ExitCode()
	}
	return outBuf.String(), errBuf.String(), code
}

func writeUsers(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	body := `[{"name":"amy","age":31},{"name":"bob","age":17},{"name":"cid","age":45}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeShopDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	for _, stmt := range []string{
		`CREATE TABLE items (sku TEXT, price REAL, qty INTEGER)`,
		`INSERT INTO items VALUES ('a1', 2.5, 4), ('b2', 10, 1), ('c3', 1, 0)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	return path
}

func TestCLIJSONSource(t *testing.T) {
	out, stderr, code := cliRun(t, "", "-s", "users="+writeUsers(t), "-f", "jsonl",
		"from u in $users where u.age > 18 orderby u.name select u.name")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if out != "\"amy\"\n\"cid\"\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLIStdin(t *testing.T) {
	out, stderr, code := cliRun(t, "from n in [1, 2, 3] select n * n\n", "-f", "jsonl")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if out != "1\n4\n9\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLISQLiteTable(t *testing.T) {
	out, stderr, code := cliRun(t, "", "-s", "items=sqlite://"+writeShopDB(t)+"?table=items", "-f", "table",
		"from i in $items where i.qty > 0 orderby i.price descending select { sku: i.sku, total: i.price * i.qty }")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected header, separator and 2 rows, got:\n%s", out)
	}
	if !strings.Contains(lines[0], "sku") || !strings.Contains(lines[0], "total") {
		t.Errorf("header: %q", lines[0])
	}
	if !strings.Contains(lines[2], "b2") || !strings.Contains(lines[3], "a1") {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestCLIDynamoDBSource(t *testing.T) {
	createTable(t, newDynamoClient(t), "cli_orders", orders)
	out, stderr, code := cliRun(t, "", "-s", dynamoSpec("orders", "cli_orders"), "-f", "raw",
		"from o in $orders where o.customer == 'amy' orderby o.id select o.id")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if out != "o1\no3\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLIJoinAcrossSources(t *testing.T) {
	createTable(t, newDynamoClient(t), "cli_join", orders)
	users := writeUsers(t)
	out, stderr, code := cliRun(t, "", "-s", "users="+users, "-s", dynamoSpec("orders", "cli_join"), "-f", "jsonl",
		"from u in $users join o in $orders on u.name equals o.customer into os orderby u.name select { name: u.name, orders: os.length }")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	want := "{\"name\":\"amy\",\"orders\":2}\n{\"name\":\"bob\",\"orders\":1}\n{\"name\":\"cid\",\"orders\":0}\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestCLIQueryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.linq")
	body := "from u in $users where u.age < 20 select u.name\n---\nfrom u in $users select u.age\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	out, stderr, code := cliRun(t, "", "-s", "users="+writeUsers(t), "-f", "jsonl", "query", "--file", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if out != "\"bob\"\n31\n17\n45\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLIConfigFile(t *testing.T) {
	dir := t.TempDir()
	users := writeUsers(t)
	cfg := fmt.Sprintf("format: raw\nsources:\n  users: %s\n  items: sqlite://%s?table=items\n", users, writeShopDB(t))
	cfgPath := filepath.Join(dir, "linq.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	out, stderr, code := cliRun(t, "", "--config", cfgPath, "sources")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, `"name": "items"`) || !strings.Contains(out, `"name": "users"`) {
		t.Errorf("sources output: %s", out)
	}

	out, stderr, code = cliRun(t, "", "--config", cfgPath, "from i in $items orderby i.sku select i.sku")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if out != "a1\nb2\nc3\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLIExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"compile error", []string{"from x in"}, 2},
		{"runtime type error", []string{"from x in [null] select x.a"}, 2},
		{"missing source file", []string{"-s", "u=/no/such/file.json", "from x in $u select x"}, 1},
		{"bad format", []string{"-f", "xml", "from x in [1] select x"}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, code := cliRun(t, "", tc.args...)
			if code != tc.code {
				t.Errorf("exit code: got %d, want %d (stderr %q)", code, tc.code, stderr)
			}
			if !strings.HasPrefix(stderr, "Error: ") {
				t.Errorf("stderr: got %q", stderr)
			}
		})
	}
}

func TestCLIVerboseLogsSourceLoading(t *testing.T) {
	_, stderr, code := cliRun(t, "", "--verbose", "-s", "users="+writeUsers(t), "-f", "jsonl", "from u in $users select u.name")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "loaded source") || !strings.Contains(stderr, "rows=3") {
		t.Errorf("expected debug log of source loading, got %q", stderr)
	}
}
