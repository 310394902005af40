package updater_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpsvn/internal/execshell"
	"github.com/temirov/wpsvn/internal/privilege"
	"github.com/temirov/wpsvn/internal/updater"
)

const (
	infoDocumentTemplateConstant = `<?xml version="1.0" encoding="UTF-8"?>
<info>
<entry kind="dir" path="%s" revision="3021877">
<url>%s</url>
<commit revision="2995523"><author>wordpressdotorg</author></commit>
</entry>
</info>`
	listingDocumentConstant = `<html><head><title>Revision 240000: /p2</title></head><body><ul>
<li><a href="../">..</a></li>
<li><a href="1.3.1/">1.3.1/</a></li>
<li><a href="1.3.2/">1.3.2/</a></li>
<li><a href="1.4.0/">1.4.0/</a></li>
</ul></body></html>`
)

type invocation struct {
	command   execshell.CommandName
	arguments []string
}

type fakeShellExecutor struct {
	origins       map[string]string
	readmes       map[string]string
	failingSwitch map[string]bool
	invocations   []invocation
}

func (executor *fakeShellExecutor) ExecuteSubversion(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	arguments := details.Arguments
	executor.invocations = append(executor.invocations, invocation{command: execshell.CommandSubversion, arguments: append([]string{}, arguments...)})

	switch arguments[0] {
	case "info":
		path := arguments[len(arguments)-1]
		return execshell.ExecutionResult{StandardOutput: fmt.Sprintf(infoDocumentTemplateConstant, path, executor.origins[path])}, nil
	case "checkout":
		checkoutURL, checkoutPath := arguments[len(arguments)-2], arguments[len(arguments)-1]
		if contents, exists := executor.readmes[checkoutURL]; exists {
			if writeError := os.WriteFile(filepath.Join(checkoutPath, "readme.txt"), []byte(contents), 0o600); writeError != nil {
				return execshell.ExecutionResult{}, writeError
			}
		}
		return execshell.ExecutionResult{}, nil
	case "switch":
		switchURL := arguments[len(arguments)-2]
		if executor.failingSwitch[switchURL] {
			result := execshell.ExecutionResult{ExitCode: 1, StandardError: "svn: E160013: path not found"}
			return result, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandSubversion, Details: details}, Result: result}
		}
		return execshell.ExecutionResult{}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

func (executor *fakeShellExecutor) ExecuteCommand(_ context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, invocation{command: name, arguments: append([]string{}, details.Arguments...)})
	return execshell.ExecutionResult{}, nil
}

func (executor *fakeShellExecutor) subcommands(subcommand string) [][]string {
	matched := make([][]string, 0)
	for _, recorded := range executor.invocations {
		if recorded.command == execshell.CommandSubversion && recorded.arguments[0] == subcommand {
			matched = append(matched, recorded.arguments)
		}
	}
	return matched
}

func (executor *fakeShellExecutor) serviceCalls() [][]string {
	matched := make([][]string, 0)
	for _, recorded := range executor.invocations {
		if recorded.command == execshell.CommandService {
			matched = append(matched, recorded.arguments)
		}
	}
	return matched
}

type commandFixture struct {
	pluginsRoot string
	themesRoot  string
	scratch     string
	themeHost   string
	executor    *fakeShellExecutor
	userAgents  []string
}

func newCommandFixture(testInstance *testing.T) *commandFixture {
	fixture := &commandFixture{
		pluginsRoot: filepath.Join(testInstance.TempDir(), "plugins"),
		themesRoot:  filepath.Join(testInstance.TempDir(), "themes"),
		scratch:     filepath.Join(testInstance.TempDir(), "scratch"),
		executor: &fakeShellExecutor{
			origins:       map[string]string{},
			readmes:       map[string]string{},
			failingSwitch: map[string]bool{},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fixture.userAgents = append(fixture.userAgents, request.Header.Get("User-Agent"))
		if request.URL.Path != "/p2/" {
			http.NotFound(writer, request)
			return
		}
		_, _ = writer.Write([]byte(listingDocumentConstant))
	}))
	testInstance.Cleanup(server.Close)

	serverURL, parseError := url.Parse(server.URL)
	require.NoError(testInstance, parseError)
	fixture.themeHost = serverURL.Host
	return fixture
}

func (fixture *commandFixture) addWorkingCopy(testInstance *testing.T, root string, name string, originURL string) string {
	path := filepath.Join(root, name)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(path, ".svn"), 0o755))
	fixture.executor.origins[path] = originURL
	return path
}

func (fixture *commandFixture) run(testInstance *testing.T, mutate func(*updater.CommandBuilder), arguments ...string) (string, error) {
	builder := &updater.CommandBuilder{
		ConfigurationProvider: func() updater.CommandConfiguration {
			configuration := updater.DefaultCommandConfiguration()
			configuration.ScratchDirectory = fixture.scratch
			configuration.ThemeHost = fixture.themeHost
			return configuration
		},
		ShellExecutor:    fixture.executor,
		PrivilegeChecker: privilege.NewChecker(func() int { return 0 }),
		Clock:            fixedClock{instant: time.Date(2024, time.March, 1, 4, 0, 0, 0, time.UTC)},
	}
	if mutate != nil {
		mutate(builder)
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs(append([]string{"--plugins-root", fixture.pluginsRoot, "--themes-root", fixture.themesRoot}, arguments...))
	executeError := command.ExecuteContext(context.Background())
	return output.String(), executeError
}

func TestSyncCommandProcessesBatch(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	akismetPath := fixture.addWorkingCopy(testInstance, fixture.pluginsRoot, "akismet", "http://plugins.svn.wordpress.org/akismet/tags/1.0")
	helloPath := fixture.addWorkingCopy(testInstance, fixture.pluginsRoot, "hello-dolly", "http://plugins.svn.wordpress.org/hello-dolly/trunk")
	syntaxPath := fixture.addWorkingCopy(testInstance, fixture.pluginsRoot, "wp-syntax", "http://plugins.svn.wordpress.org/wp-syntax/tags/1.0")
	themePath := fixture.addWorkingCopy(testInstance, fixture.themesRoot, "p2", "http://"+fixture.themeHost+"/p2/1.3.2")
	indexPath := filepath.Join(fixture.pluginsRoot, "index.php")
	require.NoError(testInstance, os.WriteFile(indexPath, []byte("<?php // Silence is golden."), 0o600))

	fixture.executor.readmes["http://plugins.svn.wordpress.org/akismet/trunk"] = "=== Akismet ===\nStable tag: 1.2\n"
	fixture.executor.readmes["http://plugins.svn.wordpress.org/wp-syntax/trunk"] = "=== WP-Syntax ===\nStable tag: 2.0\n"
	fixture.executor.failingSwitch["http://plugins.svn.wordpress.org/wp-syntax/tags/2.0"] = true

	output, runError := fixture.run(testInstance, nil)
	require.NoError(testInstance, runError)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(testInstance, lines, 7)
	require.Equal(testInstance, fmt.Sprintf("SYNC-DONE: %s 1.0 → 1.2 (upgrade)", akismetPath), lines[0])
	require.Equal(testInstance, fmt.Sprintf("SYNC-CURRENT: %s at trunk", helloPath), lines[1])
	require.Equal(testInstance, fmt.Sprintf("SYNC-SKIP: %s (not a directory)", indexPath), lines[2])
	require.True(testInstance, strings.HasPrefix(lines[3], fmt.Sprintf("SYNC-FALLBACK: %s 1.0 → trunk (", syntaxPath)))
	require.Equal(testInstance, fmt.Sprintf("SYNC-DONE: %s 1.3.2 → 1.4.0 (upgrade)", themePath), lines[4])
	require.Equal(testInstance, []string{"SYNC-RELOAD: nginx", "SYNC-RELOAD: php-fpm"}, lines[5:])

	require.Equal(testInstance, [][]string{
		{"switch", "--ignore-ancestry", "--non-interactive", "http://plugins.svn.wordpress.org/akismet/tags/1.2", akismetPath},
		{"switch", "--ignore-ancestry", "--non-interactive", "http://plugins.svn.wordpress.org/wp-syntax/tags/2.0", syntaxPath},
		{"switch", "--ignore-ancestry", "--non-interactive", "http://plugins.svn.wordpress.org/wp-syntax/trunk", syntaxPath},
		{"switch", "--ignore-ancestry", "--non-interactive", "http://" + fixture.themeHost + "/p2/1.4.0", themePath},
	}, fixture.executor.subcommands("switch"))
	require.Equal(testInstance, [][]string{{"update", "--non-interactive", helloPath}}, fixture.executor.subcommands("update"))
	require.Len(testInstance, fixture.executor.subcommands("checkout"), 3)
	require.Equal(testInstance, [][]string{{"nginx", "reload"}, {"php-fpm", "reload"}}, fixture.executor.serviceCalls())
	require.Len(testInstance, fixture.userAgents, 1)
	require.Contains(testInstance, fixture.userAgents[0], "Mozilla/5.0")
}

func TestSyncCommandDryRunPlansOnly(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	akismetPath := fixture.addWorkingCopy(testInstance, fixture.pluginsRoot, "akismet", "http://plugins.svn.wordpress.org/akismet/tags/1.0")
	fixture.addWorkingCopy(testInstance, fixture.pluginsRoot, "hello-dolly", "http://plugins.svn.wordpress.org/hello-dolly/trunk")
	fixture.executor.readmes["http://plugins.svn.wordpress.org/akismet/trunk"] = "Stable tag: 1.2\n"

	output, runError := fixture.run(testInstance, nil, "--dry-run")
	require.NoError(testInstance, runError)

	require.Contains(testInstance, output, fmt.Sprintf("PLAN-SWITCH: %s 1.0 → 1.2 (upgrade)", akismetPath))
	require.Empty(testInstance, fixture.executor.subcommands("switch"))
	require.Empty(testInstance, fixture.executor.subcommands("update"))
	require.Empty(testInstance, fixture.executor.serviceCalls())
}

func TestSyncCommandWritesYAMLReport(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.addWorkingCopy(testInstance, fixture.themesRoot, "p2", "http://"+fixture.themeHost+"/p2/1.4.0")

	output, runError := fixture.run(testInstance, nil, "--report", "yaml")
	require.NoError(testInstance, runError)

	require.Contains(testInstance, output, "2024-03-01T04:00:00Z")
	require.Contains(testInstance, output, "outcome: current")
	require.Contains(testInstance, output, "updated: false")
	require.NotContains(testInstance, output, "SYNC-")
	require.Empty(testInstance, fixture.executor.serviceCalls())
}

func TestSyncCommandRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "positional_arguments", arguments: []string{"extra"}, expectedError: "does not accept positional arguments"},
		{name: "unknown_report", arguments: []string{"--report", "json"}, expectedError: "unsupported report format"},
		{name: "unknown_theme_source", arguments: []string{"--theme-source", "readme"}, expectedError: "unsupported"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			_, runError := fixture.run(testInstance, nil, testCase.arguments...)
			require.ErrorContains(testInstance, runError, testCase.expectedError)
			require.Empty(testInstance, fixture.executor.invocations)
		})
	}
}

func TestSyncCommandRequiresRoot(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.addWorkingCopy(testInstance, fixture.pluginsRoot, "akismet", "http://plugins.svn.wordpress.org/akismet/tags/1.0")

	_, runError := fixture.run(testInstance, func(builder *updater.CommandBuilder) {
		builder.PrivilegeChecker = privilege.NewChecker(func() int { return 1000 })
	})
	require.ErrorIs(testInstance, runError, privilege.ErrNotPrivileged)
	require.Empty(testInstance, fixture.executor.invocations)
}
