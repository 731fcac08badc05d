package toolbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	maxResponseSize     = 1 << 20 // 1MB
	defaultFetchTimeout = 30 * time.Second
)

func fetchHandler(client *http.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return mcp.NewToolResultError("url must start with http:// or https://"), nil
		}

		format := request.GetString("format", "markdown")
		if format != "markdown" && format != "text" && format != "html" {
			return mcp.NewToolResultError("format must be 'markdown', 'text', or 'html'"), nil
		}

		content, contentType, err := fetch(ctx, client, url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if format == "html" || !strings.Contains(contentType, "text/html") {
			return mcp.NewToolResultText(content), nil
		}

		var output string
		if format == "markdown" {
			output, err = convertHTMLToMarkdown(content)
		} else {
			output, err = extractTextFromHTML(content)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert page: %v", err)), nil
		}
		return mcp.NewToolResultText(output), nil
	}
}

func fetch(ctx context.Context, client *http.Client, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "mcpchat-toolbox/"+Version)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("request failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return "", "", fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxResponseSize {
		return "", "", fmt.Errorf("response too large (exceeds 1MB limit)")
	}

	return string(body), resp.Header.Get("Content-Type"), nil
}

// extractTextFromHTML extracts plain text from HTML, removing scripts, styles, and other non-content elements.
func extractTextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, iframe, object, embed").Remove()
	return strings.TrimSpace(doc.Text()), nil
}

func convertHTMLToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
	})
	converter.Remove("script", "style", "meta", "link")
	return converter.ConvertString(html)
}
