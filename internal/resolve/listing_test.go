package resolve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/wpsvn/internal/origin"
	"github.com/temirov/wpsvn/internal/resolve"
)

const (
	testThemeListingConstant = `<html><head><title>Revision 212345: /p2</title></head>
<body>
 <h2>Revision 212345: /p2</h2>
 <ul>
  <li><a href="../">..</a></li>
  <li><a href="1.3.1/">1.3.1/</a></li>
  <li><a href="1.3.2/">1.3.2/</a></li>
  <li><a href="1.4.0/">1.4.0/</a></li>
 </ul>
 <hr noshade><em>Powered by <a href="http://subversion.apache.org/">Apache Subversion</a></em>
</body></html>`
	testEmptyListingConstant = `<html><body><ul><li><a href="../">..</a></li></ul></body></html>`
)

func newListingServer(testInstance *testing.T, statusCode int, body string, recordedPaths *[]string, recordedAgents *[]string) *httptest.Server {
	testInstance.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*recordedPaths = append(*recordedPaths, request.URL.Path)
		*recordedAgents = append(*recordedAgents, request.Header.Get("User-Agent"))
		writer.WriteHeader(statusCode)
		_, _ = writer.Write([]byte(body))
	}))
	testInstance.Cleanup(server.Close)
	return server
}

func TestListingResolverReturnsLastEntry(testInstance *testing.T) {
	var recordedPaths []string
	var recordedAgents []string
	server := newListingServer(testInstance, http.StatusOK, testThemeListingConstant, &recordedPaths, &recordedAgents)

	resolver, creationError := resolve.NewListingResolver(server.Client(), "", zap.NewNop())
	require.NoError(testInstance, creationError)

	resolved, resolveError := resolver.Resolve(context.Background(), origin.Origin{Kind: origin.KindTheme, RepositoryURL: server.URL + "/p2"})
	require.NoError(testInstance, resolveError)

	require.Equal(testInstance, resolve.ResolvedVersion{Tag: "1.4.0", Source: resolve.SourceListing}, resolved)
	require.Equal(testInstance, []string{"/p2/"}, recordedPaths)
	require.Equal(testInstance, []string{resolve.DefaultUserAgentConstant}, recordedAgents)
}

func TestListingResolverFailures(testInstance *testing.T) {
	testCases := []struct {
		name           string
		statusCode     int
		body           string
		expectedStatus int
		expectNoEntry  bool
	}{
		{name: "not_found", statusCode: http.StatusNotFound, body: "missing", expectedStatus: http.StatusNotFound},
		{name: "server_error", statusCode: http.StatusBadGateway, body: testThemeListingConstant, expectedStatus: http.StatusBadGateway},
		{name: "only_parent_link", statusCode: http.StatusOK, body: testEmptyListingConstant, expectNoEntry: true},
		{name: "not_a_listing", statusCode: http.StatusOK, body: "plain text", expectNoEntry: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var recordedPaths []string
			var recordedAgents []string
			server := newListingServer(testInstance, testCase.statusCode, testCase.body, &recordedPaths, &recordedAgents)

			resolver, creationError := resolve.NewListingResolver(server.Client(), "wpsvn-test", zap.NewNop())
			require.NoError(testInstance, creationError)

			_, resolveError := resolver.Resolve(context.Background(), origin.Origin{Kind: origin.KindTheme, RepositoryURL: server.URL + "/p2"})
			require.Error(testInstance, resolveError)
			require.Equal(testInstance, []string{"wpsvn-test"}, recordedAgents)

			if testCase.expectNoEntry {
				require.ErrorIs(testInstance, resolveError, resolve.ErrNoVersionFound)
				return
			}
			var statusError resolve.HTTPStatusError
			require.ErrorAs(testInstance, resolveError, &statusError)
			require.Equal(testInstance, testCase.expectedStatus, statusError.StatusCode)
		})
	}
}

func TestNewListingResolverRequiresClient(testInstance *testing.T) {
	_, creationError := resolve.NewListingResolver(nil, "", nil)
	require.ErrorIs(testInstance, creationError, resolve.ErrHTTPClientNotConfigured)
}
