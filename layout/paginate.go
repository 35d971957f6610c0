package layout

import "strings"

// PaginateBy 把有序条目按分组键聚成连续簇，再贪心装入容量为 capacity 的页。
//
// 相邻且键相同的条目属于同一簇；空白键永远单独成簇。能放进一页的簇不会被拆开，
// 超出容量的簇按 capacity 切成连续的整页（最后一页可以不满）。
func PaginateBy[T any](items []T, key func(T) string, capacity int) [][]T {
	if capacity < 1 {
		capacity = 1
	}
	var pages [][]T
	for _, cluster := range clusterBy(items, key) {
		if len(cluster) > capacity {
			for start := 0; start < len(cluster); start += capacity {
				end := min(start+capacity, len(cluster))
				pages = append(pages, cluster[start:end:end])
			}
			continue
		}
		if last := len(pages) - 1; last >= 0 && len(pages[last])+len(cluster) <= capacity {
			pages[last] = append(pages[last], cluster...)
			continue
		}
		page := make([]T, len(cluster), capacity)
		copy(page, cluster)
		pages = append(pages, page)
	}
	return pages
}

func clusterBy[T any](items []T, key func(T) string) [][]T {
	var clusters [][]T
	last := ""
	for _, it := range items {
		k := strings.TrimSpace(key(it))
		if k != "" && k == last && len(clusters) > 0 {
			clusters[len(clusters)-1] = append(clusters[len(clusters)-1], it)
			continue
		}
		clusters = append(clusters, []T{it})
		last = k
	}
	return clusters
}
