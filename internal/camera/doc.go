// Package camera カメラセンサーとフレームバッファを抽象化する
//
// # 責務
// - FrameSource: 有限個のフレームバッファの取得・返却
// - SensorHandle: センサー固有の設定操作（名前付きセッター、レジスタ、PLL、クロック）
// - フレームバッファプールによる取得/返却の対応付け
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - ハードウェアがない環境でストリーミングを試したい（SimSensor + SimulatedSource）
// - V4L2デバイスからMJPEGを取得したい（V4L2Source + V4L2Sensor）
// - テストで呼び出しを記録したい（SimSensor の呼び出しログ、MockFrameSource）
//
// # 仕様
//   - 取得したフレームは必ず一度だけ Release する
//   - プールが枯渇した場合、Acquire はタイムアウト後に ErrNoFrame を返す
//   - 二重返却はプールを壊さず、エラーとして扱う
//   - センサーの同時アクセスはセンサー実装側で直列化する
//
// # 前提要件
//   - V4L2Source を使う場合は ffmpeg と v4l2-utils が必要
//     Ubuntu/Debian: sudo apt install ffmpeg v4l-utils
package camera
