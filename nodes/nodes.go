// Package nodes keeps the list of public remote daemons the wallet can
// connect to when it does not run its own.
package nodes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/fedoragold/walletshell/collections"
	"github.com/fedoragold/walletshell/settings"
	"github.com/fedoragold/walletshell/source"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNoNodes is returned by Refresh when the update document holds no
// usable node.
var ErrNoNodes = errors.New("node list has no valid nodes")

// List is the current set of remote nodes. It starts with the fallback
// nodes and is replaced by every successful Refresh.
type List struct {
	sync.RWMutex
	defaultHost string
	repo        source.Repository
	nodes       []string
}

// NewList returns a List serving fallback until a refresh from repo
// succeeds. repo may be nil, in which case Refresh is a no-op.
func NewList(fallback []string, defaultHost string, repo source.Repository) *List {
	valid := make([]string, 0, len(fallback))
	for _, node := range fallback {
		if settings.ValidNodeAddress(node) {
			valid = append(valid, node)
		}
	}
	return &List{
		defaultHost: defaultHost,
		repo:        repo,
		nodes:       collections.UniqueBy(valid, identity),
	}
}

// Refresh fetches the node list document. The current list is kept when
// the fetch fails or the document has no valid node.
func (l *List) Refresh(ctx context.Context) error {
	if l.repo == nil {
		return nil
	}
	if err := l.repo.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh %s: %w", l.repo.GetName(), err)
	}
	nodes, err := Parse(l.repo.GetRawData())
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return ErrNoNodes
	}

	l.Lock()
	l.nodes = nodes
	l.Unlock()
	logrus.WithField("source", l.repo.GetName()).WithField("count", len(nodes)).Debug("node list updated")
	return nil
}

// Nodes returns a copy of the current list.
func (l *List) Nodes() []string {
	l.RLock()
	defer l.RUnlock()
	return append([]string(nil), l.nodes...)
}

// Shuffled returns the current list in random order.
func (l *List) Shuffled() []string {
	l.RLock()
	defer l.RUnlock()
	return collections.Shuffle(l.nodes)
}

// Candidates returns the nodes to try in order: the default host first when
// one is set, then the remote nodes shuffled. Duplicates are removed.
func (l *List) Candidates() []string {
	var out []string
	if l.defaultHost != "" {
		out = append(out, l.defaultHost)
	}
	out = append(out, l.Shuffled()...)
	return collections.UniqueBy(out, identity)
}

// Parse extracts host:port entries from a node list document. The document
// is either a bare sequence or a mapping with a nodes key. Each entry is a
// host:port string or an object with a url or host key and an optional
// port. Invalid entries are skipped.
func Parse(raw []byte) ([]string, error) {
	var root interface{}
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("unmarshal node list: %w", err)
	}

	var items []interface{}
	switch v := root.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		list, ok := v["nodes"].([]interface{})
		if !ok {
			return nil, errors.New("node list has no nodes sequence")
		}
		items = list
	default:
		return nil, errors.New("node list is neither a sequence nor a mapping")
	}

	nodes := make([]string, 0, len(items))
	for _, item := range items {
		node, ok := entry(item)
		if !ok || !settings.ValidNodeAddress(node) {
			logrus.WithField("entry", item).Debug("skipping invalid node entry")
			continue
		}
		nodes = append(nodes, node)
	}
	return collections.UniqueBy(nodes, identity), nil
}

func entry(item interface{}) (string, bool) {
	switch v := item.(type) {
	case string:
		return hostPort(v, ""), true
	case map[string]interface{}:
		port := ""
		switch p := v["port"].(type) {
		case int:
			port = strconv.Itoa(p)
		case string:
			port = p
		}
		if u, ok := v["url"].(string); ok {
			return hostPort(u, port), true
		}
		if h, ok := v["host"].(string); ok {
			return hostPort(h, port), true
		}
	}
	return "", false
}

// hostPort reduces s, which may be a URL, to host:port. port is used when s
// carries none.
func hostPort(s, port string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Host
		}
	}
	if port == "" {
		return s
	}
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s
	}
	return net.JoinHostPort(strings.Trim(s, "[]"), port)
}

func identity(s string) string { return s }
