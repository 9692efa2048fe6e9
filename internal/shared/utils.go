package shared

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// GetUserInput prompts the user for input with a default value, exactly as
// the teacher's download-menu prompts do.
func GetUserInput(prompt, defaultValue string) string {
	if defaultValue != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, defaultValue)
	}
	ColorPrompt.Print(prompt + ": ")
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" && defaultValue != "" {
			return defaultValue
		}
		return input
	}
	return defaultValue
}

// GetYesNoInput prompts for a yes/no answer, re-asking on anything else.
func GetYesNoInput(prompt string, defaultValue string) bool {
	for {
		input := GetUserInput(prompt, defaultValue)
		switch strings.ToLower(input) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			ColorError.Printf("Invalid input. Please enter 'y' or 'n'.\n")
		}
	}
}

// SanitizeFileName cleans a string to make it safe for use as a file name.
func SanitizeFileName(name string) string {
	invalidChars := []string{"<", ">", ":", `"`, `/`, `\`, `|`, `?`, `*`, "\x00"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.Trim(result, " .")
	if len(result) > 255 {
		result = result[:255]
	}
	if result == "" {
		result = "unknown"
	}
	return result
}

// TruncateFileName fits name (without its extension) into maxBytes by
// truncating the stem and appending an ellipsis, preserving the suffix —
// the filesystem error-handling rule for names exceeding 255 bytes.
func TruncateFileName(name string, ext string, maxBytes int) string {
	budget := maxBytes - len(ext)
	if budget <= 0 {
		return name
	}
	if len(name) <= budget {
		return name + ext
	}
	const ellipsis = "..."
	stemBudget := budget - len(ellipsis)
	if stemBudget < 1 {
		stemBudget = 1
	}
	if stemBudget > len(name) {
		stemBudget = len(name)
	}
	return name[:stemBudget] + ellipsis + ext
}

// FileExists checks if a regular file exists at path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// TruncateString truncates s to maxLen, adding an ellipsis if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// IsTTY reports whether stdout is attached to an interactive terminal;
// internal/app uses this to decide whether to show the scan progress bar.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// ParseSelectionInput parses a string like "1-7, 10, 12-15" into a slice of
// unique integers in [1, max], preserving first-seen order.
func ParseSelectionInput(input string, max int) ([]int, error) {
	selected := make(map[int]bool)
	var result []int

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}
			start, err1 := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err1 != nil {
				return nil, fmt.Errorf("invalid start of range: %s", rangeParts[0])
			}
			end, err2 := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err2 != nil {
				return nil, fmt.Errorf("invalid end of range: %s", rangeParts[1])
			}
			if start > end {
				start, end = end, start
			}
			for i := start; i <= end; i++ {
				if i >= 1 && i <= max && !selected[i] {
					selected[i] = true
					result = append(result, i)
				}
			}
		} else {
			num, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid number: %s", part)
			}
			if num >= 1 && num <= max && !selected[num] {
				selected[num] = true
				result = append(result, num)
			}
		}
	}

	return result, nil
}

// CreateDirIfNotExists creates dir (and parents) if it doesn't already
// exist.
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
