// Package stream は、フレームのHTTP配信を担当します。
//
// 責務:
//   - multipart/x-mixed-replace によるMJPEGストリーム配信
//   - 単一フレームのスナップショット応答
//   - WebSocketによるフレーム配信
//
// 仕様:
//   - 取得したフレームは成功・失敗のどの経路でも一度だけ返却する
//   - 境界文字列とパートヘッダーは固定テンプレートでバイト単位まで一致させる
//   - 取得失敗時の再試行回数は Policy で設定する（既定は再試行なし）
//   - 送信失敗（クライアント切断）はその接続だけを終了させる
package stream
