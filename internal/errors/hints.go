package errors

// LimitHints returns optimization suggestions tied to a specific structural
// limit, so an authoring UI can tell the user how to get back under it.
func LimitHints(limitName string) []string {
	switch limitName {
	case "node count":
		return []string{
			"Remove unused wrapper elements and empty containers",
			"Split very large templates into multiple smaller ones",
		}
	case "nesting depth":
		return []string{
			"Flatten deeply nested containers; most layouts need fewer than 10 levels",
		}
	case "component count":
		return []string{
			"Reduce the number of interactive components on a single page",
			"Replace repeated component groups with a single list component",
		}
	case "island count":
		return []string{
			"Combine adjacent interactive components into one parent component",
			"Convert decorative components to plain HTML, which needs no hydration",
		}
	case "computed variable count":
		return []string{
			"Remove computed variables that are never referenced",
			"Derive several values inside one expression instead of declaring many",
		}
	case "expression length":
		return []string{
			"Break long expressions into intermediate computed variables",
		}
	case "loop iteration count":
		return []string{
			"Lower the loop bound or paginate the data the loop renders",
		}
	case "template size":
		return []string{
			"Trim inline data and long literal text from the template body",
			"Move large static sections into custom CSS or hosted assets",
		}
	default:
		return nil
	}
}
