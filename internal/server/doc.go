// Package server は、HTTPサーバーとWebSocket通信を管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// カメラ制御リクエストの振り分け、ランディングページの配信を担当します。
//
// 責務:
//   - ginエンジンの構築と生成されたServerInterfaceの登録
//   - MJPEGストリーム、スナップショット、WebSocket配信の接続管理
//   - 設定・レジスタ・クロック・切り出し窓の制御リクエスト処理
//   - センサー状態のJSON応答
//
// 仕様:
//   - エラー応答は短いプレーンテキスト（400: パラメータ不正、500: ドライバー失敗、501: 未対応）
//   - シャットダウン時は配信中のストリームを終了させてからフレームソースを閉じる
//   - 複数クライアントの同時接続をサポート
package server
