// Package imageref derives image host asset identifiers from stored image URLs.
//
// A hosted image URL looks like
//
//	https://res.cloudinary.com/<cloud>/image/upload/v1680000/rifakat/abc.jpg
//
// and its public id is the path after the version segment without the
// extension: "rifakat/abc". URLs that do not follow this layout are reported
// as unresolvable; callers skip them rather than guess.
package imageref

import "strings"

const uploadSegment = "upload"

// PublicID returns the asset identifier for url. The second result is false
// when url has no "upload" segment, nothing follows the version segment, or
// the identifier would be empty.
func PublicID(url string) (string, bool) {
	parts := strings.Split(url, "/")

	uploadIndex := -1
	for i, p := range parts {
		if p == uploadSegment {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 || uploadIndex+2 >= len(parts) {
		return "", false
	}

	id := strings.Join(parts[uploadIndex+2:], "/")
	if dot := strings.LastIndex(id, "."); dot != -1 {
		id = id[:dot]
	}
	if id == "" {
		return "", false
	}
	return id, true
}

// Resolution is the outcome of resolving a set of image URLs.
type Resolution struct {
	// PublicIDs holds unique identifiers in first-seen order.
	PublicIDs []string
	// Unresolved holds the URLs that PublicID rejected.
	Unresolved []string
}

// Resolve maps every URL to its public id, dropping duplicates.
func Resolve(urls []string) Resolution {
	var res Resolution
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		id, ok := PublicID(u)
		if !ok {
			res.Unresolved = append(res.Unresolved, u)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		res.PublicIDs = append(res.PublicIDs, id)
	}
	return res
}
