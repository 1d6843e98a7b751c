package cloudfront

// Distribution はCloudFrontディストリビューションの情報を保持する構造体
type Distribution struct {
	Id         string
	DomainName string
	Aliases    []string // 代替ドメイン名（CNAME）、なければ空
	Status     string   // 例: "Deployed", "InProgress"
}

// PrefixEntry はホスト名とディストリビューションの対応を表す1行
type PrefixEntry struct {
	Hostname       string
	DistributionId string
	Status         string
}

// InvalidationSummary は無効化一覧の1件
type InvalidationSummary struct {
	Id     string
	Status string
}

// InvalidationDetail は無効化の詳細（対象パスとステータス）
type InvalidationDetail struct {
	Id     string
	Status string
	Paths  []string
}

// InvalidationRequest は無効化リクエストの送信内容
type InvalidationRequest struct {
	DistributionId  string
	Paths           []string
	CallerReference string // 冪等性キー。リクエストごとに新規生成する
}

// InvalidationAck は無効化作成時のプロバイダー応答
type InvalidationAck struct {
	Id     string
	Status string
}

// InvalidationRecord は処理中の無効化をパス単位で表したレポート用の値
type InvalidationRecord struct {
	Path           string
	Status         string
	DistributionId string
	Domains        []string
}

// PurgeResult はPurgeの結果。Foundがfalseの場合はディストリビューションが見つからなかったことを表す
type PurgeResult struct {
	Found          bool
	Path           string
	Hostname       string
	DistributionId string
	InvalidationId string
}

// CompletedStatus は完了済み無効化のステータス
const CompletedStatus = "Completed"
