package subversion

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/wpsvn/internal/execshell"
)

const (
	infoSubcommandConstant                  = "info"
	listSubcommandConstant                  = "list"
	switchSubcommandConstant                = "switch"
	updateSubcommandConstant                = "update"
	checkoutSubcommandConstant              = "checkout"
	xmlFlagConstant                         = "--xml"
	nonInteractiveFlagConstant              = "--non-interactive"
	ignoreAncestryFlagConstant              = "--ignore-ancestry"
	depthFlagConstant                       = "--depth"
	localeEnvironmentNameConstant           = "LC_ALL"
	localeEnvironmentValueConstant          = "C"
	executorNotConfiguredMessageConstant    = "subversion executor not configured"
	requiredValueMessageConstant            = "value required"
	entryMissingMessageConstant             = "no entry found"
	urlMissingMessageConstant               = "no url found"
	commitMissingMessageConstant            = "no commit found"
	entryNameMissingMessageConstant         = "entry without name"
	revisionParseErrorTemplateConstant      = "invalid revision %q: %w"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	pathFieldNameConstant                   = "path"
	urlFieldNameConstant                    = "url"
	depthFieldNameConstant                  = "depth"
	infoOperationNameConstant               = OperationName("Info")
	listOperationNameConstant               = OperationName("List")
	switchOperationNameConstant             = OperationName("Switch")
	updateOperationNameConstant             = OperationName("Update")
	checkoutOperationNameConstant           = OperationName("Checkout")
)

// OperationName describes a named svn workflow supported by the client.
type OperationName string

// Depth enumerates svn checkout depths.
type Depth string

// Supported checkout depths.
const (
	DepthEmpty      Depth = "empty"
	DepthFiles      Depth = "files"
	DepthImmediates Depth = "immediates"
	DepthInfinity   Depth = "infinity"
)

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrEntryMissing indicates svn info output did not contain an entry element.
	ErrEntryMissing = errors.New(entryMissingMessageConstant)
	// ErrURLMissing indicates the svn info entry had no url element.
	ErrURLMissing = errors.New(urlMissingMessageConstant)
	// ErrCommitMissing indicates the svn info entry had no commit element.
	ErrCommitMissing = errors.New(commitMissingMessageConstant)
	// ErrEntryNameMissing indicates an svn list entry had no name element.
	ErrEntryNameMissing = errors.New(entryNameMissingMessageConstant)
)

// Info describes the working copy metadata reported by svn info.
type Info struct {
	Path           string
	Kind           string
	URL            string
	RepositoryRoot string
	Revision       int64
	CommitRevision int64
	CommitAuthor   string
}

// ListEntry describes a single remote directory entry reported by svn list.
type ListEntry struct {
	Name           string
	Kind           string
	CommitRevision int64
}

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	ExecuteSubversion(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates svn invocations through execshell.
type Client struct {
	executor CommandExecutor
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for svn operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates the XML output of svn could not be interpreted.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying cause.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

type infoDocument struct {
	XMLName xml.Name    `xml:"info"`
	Entries []infoEntry `xml:"entry"`
}

type infoEntry struct {
	Kind       string          `xml:"kind,attr"`
	Path       string          `xml:"path,attr"`
	Revision   string          `xml:"revision,attr"`
	URL        *string         `xml:"url"`
	Repository repositoryBlock `xml:"repository"`
	Commit     *commitBlock    `xml:"commit"`
}

type repositoryBlock struct {
	Root string `xml:"root"`
	UUID string `xml:"uuid"`
}

type commitBlock struct {
	Revision string `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
}

type listsDocument struct {
	XMLName xml.Name    `xml:"lists"`
	Lists   []listBlock `xml:"list"`
}

type listBlock struct {
	Path    string      `xml:"path,attr"`
	Entries []listEntry `xml:"entry"`
}

type listEntry struct {
	Kind   string       `xml:"kind,attr"`
	Name   *string      `xml:"name"`
	Commit *commitBlock `xml:"commit"`
}

// NewClient constructs a Client using the provided executor.
func NewClient(executor CommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Info reads the working copy metadata for path via svn info --xml.
func (client *Client) Info(executionContext context.Context, path string) (Info, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return Info{}, InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.execute(executionContext, []string{infoSubcommandConstant, xmlFlagConstant, nonInteractiveFlagConstant, trimmedPath})
	if executionError != nil {
		return Info{}, OperationError{Operation: infoOperationNameConstant, Cause: executionError}
	}

	return decodeInfo(executionResult.StandardOutput)
}

// List reads the remote directory listing for url via svn list --xml.
func (client *Client) List(executionContext context.Context, url string) ([]ListEntry, error) {
	trimmedURL := strings.TrimSpace(url)
	if len(trimmedURL) == 0 {
		return nil, InvalidInputError{FieldName: urlFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.execute(executionContext, []string{listSubcommandConstant, xmlFlagConstant, nonInteractiveFlagConstant, trimmedURL})
	if executionError != nil {
		return nil, OperationError{Operation: listOperationNameConstant, Cause: executionError}
	}

	return decodeList(executionResult.StandardOutput)
}

// Switch retargets the working copy at path to url, ignoring ancestry so unrelated tag lines are accepted.
func (client *Client) Switch(executionContext context.Context, path string, url string) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedURL := strings.TrimSpace(url)
	if len(trimmedURL) == 0 {
		return InvalidInputError{FieldName: urlFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := client.execute(executionContext, []string{switchSubcommandConstant, ignoreAncestryFlagConstant, nonInteractiveFlagConstant, trimmedURL, trimmedPath})
	if executionError != nil {
		return OperationError{Operation: switchOperationNameConstant, Cause: executionError}
	}
	return nil
}

// Update refreshes the working copy at path to the head of its current URL.
func (client *Client) Update(executionContext context.Context, path string) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := client.execute(executionContext, []string{updateSubcommandConstant, nonInteractiveFlagConstant, trimmedPath})
	if executionError != nil {
		return OperationError{Operation: updateOperationNameConstant, Cause: executionError}
	}
	return nil
}

// Checkout checks out url into path limited to depth.
func (client *Client) Checkout(executionContext context.Context, url string, path string, depth Depth) error {
	trimmedURL := strings.TrimSpace(url)
	if len(trimmedURL) == 0 {
		return InvalidInputError{FieldName: urlFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(string(depth))) == 0 {
		return InvalidInputError{FieldName: depthFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := client.execute(executionContext, []string{checkoutSubcommandConstant, depthFlagConstant, string(depth), nonInteractiveFlagConstant, trimmedURL, trimmedPath})
	if executionError != nil {
		return OperationError{Operation: checkoutOperationNameConstant, Cause: executionError}
	}
	return nil
}

func (client *Client) execute(executionContext context.Context, arguments []string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:            arguments,
		EnvironmentVariables: map[string]string{localeEnvironmentNameConstant: localeEnvironmentValueConstant},
	}
	return client.executor.ExecuteSubversion(executionContext, commandDetails)
}

func decodeInfo(output string) (Info, error) {
	var document infoDocument
	if decodeError := xml.Unmarshal([]byte(output), &document); decodeError != nil {
		return Info{}, ResponseDecodingError{Operation: infoOperationNameConstant, Cause: decodeError}
	}

	if len(document.Entries) == 0 {
		return Info{}, ResponseDecodingError{Operation: infoOperationNameConstant, Cause: ErrEntryMissing}
	}
	entry := document.Entries[0]

	if entry.URL == nil || len(strings.TrimSpace(*entry.URL)) == 0 {
		return Info{}, ResponseDecodingError{Operation: infoOperationNameConstant, Cause: ErrURLMissing}
	}
	if entry.Commit == nil {
		return Info{}, ResponseDecodingError{Operation: infoOperationNameConstant, Cause: ErrCommitMissing}
	}

	revision, revisionError := parseRevision(entry.Revision)
	if revisionError != nil {
		return Info{}, ResponseDecodingError{Operation: infoOperationNameConstant, Cause: revisionError}
	}
	commitRevision, commitRevisionError := parseRevision(entry.Commit.Revision)
	if commitRevisionError != nil {
		return Info{}, ResponseDecodingError{Operation: infoOperationNameConstant, Cause: commitRevisionError}
	}

	return Info{
		Path:           entry.Path,
		Kind:           entry.Kind,
		URL:            strings.TrimSpace(*entry.URL),
		RepositoryRoot: strings.TrimSpace(entry.Repository.Root),
		Revision:       revision,
		CommitRevision: commitRevision,
		CommitAuthor:   strings.TrimSpace(entry.Commit.Author),
	}, nil
}

func decodeList(output string) ([]ListEntry, error) {
	var document listsDocument
	if decodeError := xml.Unmarshal([]byte(output), &document); decodeError != nil {
		return nil, ResponseDecodingError{Operation: listOperationNameConstant, Cause: decodeError}
	}

	entries := make([]ListEntry, 0)
	for _, list := range document.Lists {
		for _, entry := range list.Entries {
			if entry.Name == nil || len(strings.TrimSpace(*entry.Name)) == 0 {
				return nil, ResponseDecodingError{Operation: listOperationNameConstant, Cause: ErrEntryNameMissing}
			}

			var commitRevision int64
			if entry.Commit != nil {
				parsedRevision, revisionError := parseRevision(entry.Commit.Revision)
				if revisionError != nil {
					return nil, ResponseDecodingError{Operation: listOperationNameConstant, Cause: revisionError}
				}
				commitRevision = parsedRevision
			}

			entries = append(entries, ListEntry{
				Name:           strings.TrimSpace(*entry.Name),
				Kind:           entry.Kind,
				CommitRevision: commitRevision,
			})
		}
	}

	return entries, nil
}

func parseRevision(rawRevision string) (int64, error) {
	trimmedRevision := strings.TrimSpace(rawRevision)
	if len(trimmedRevision) == 0 {
		return 0, nil
	}
	revision, parseError := strconv.ParseInt(trimmedRevision, 10, 64)
	if parseError != nil {
		return 0, fmt.Errorf(revisionParseErrorTemplateConstant, rawRevision, parseError)
	}
	return revision, nil
}
