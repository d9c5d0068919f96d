package audio

import "github.com/gin-gonic/gin"

// RegisterRoutes serves stored files under /audio/{filename}. Missing files
// get the file server's 404; directory listing is off.
func (s *Store) RegisterRoutes(r gin.IRouter) {
	r.StaticFS(routePrefix, gin.Dir(s.Dir(), false))
}
