package chat

import (
	"cfbot/internal/logger"
	"context"
	"regexp"
)

// Reply はコマンドへの返信。Codeがtrueの場合はコードブロックとして表示する
type Reply struct {
	Text string `json:"reply"`
	Code bool   `json:"code"`
}

// Handler はパターンに一致したメッセージを処理する。matchには名前付きグループの値が入る
type Handler func(ctx context.Context, match map[string]string) (Reply, error)

// Command は登録済みコマンドの説明
type Command struct {
	Name        string
	Pattern     string
	Description string
}

type route struct {
	Command
	re      *regexp.Regexp
	handler Handler
}

// Router はメッセージ本文を正規表現で照合し、最初に一致したハンドラーを実行する
type Router struct {
	routes []route
	log    logger.Logger
}

// NewRouter はRouterを作成する
func NewRouter(log logger.Logger) *Router {
	if log == nil {
		log = logger.NewNop()
	}
	return &Router{log: log}
}

// On はパターンとハンドラーを登録する。パターンが不正な場合はpanicする
func (r *Router) On(pattern, name, description string, handler Handler) {
	r.routes = append(r.routes, route{
		Command: Command{Name: name, Pattern: pattern, Description: description},
		re:      regexp.MustCompile(pattern),
		handler: handler,
	})
}

// Commands は登録順にコマンド一覧を返す
func (r *Router) Commands() []Command {
	cmds := make([]Command, len(r.routes))
	for i, rt := range r.routes {
		cmds[i] = rt.Command
	}
	return cmds
}

// Dispatch はメッセージを処理して返信を返す。一致するコマンドがなければok=false。
// ハンドラーのエラーは利用者向けの失敗メッセージとして返信する
func (r *Router) Dispatch(ctx context.Context, body string) (reply Reply, ok bool) {
	for _, rt := range r.routes {
		m := rt.re.FindStringSubmatch(body)
		if m == nil {
			continue
		}

		match := make(map[string]string)
		for i, name := range rt.re.SubexpNames() {
			if name != "" {
				match[name] = m[i]
			}
		}

		r.log.Debug("command matched", logger.String("command", rt.Name))
		reply, err := rt.handler(ctx, match)
		if err != nil {
			r.log.Error("command failed", logger.String("command", rt.Name), logger.Error(err))
			return Reply{Text: "Failed: " + err.Error()}, true
		}
		return reply, true
	}
	return Reply{}, false
}
