package web

import (
	"html/template"
)

var dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>FingerPulse Dashboard</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }

        :root {
            --bg-primary: #0a0f0a;
            --bg-card: rgba(0, 40, 0, 0.4);
            --border-color: #1a4a1a;
            --text-primary: #00ff41;
            --text-secondary: #00cc33;
            --text-dim: #336633;
            --accent: #00ff41;
            --danger: #ff3333;
            --warn: #ffaa00;
        }

        body {
            font-family: 'Courier New', monospace;
            background: var(--bg-primary);
            color: var(--text-primary);
            min-height: 100vh;
            padding: 1.5rem;
        }

        .container { max-width: 1200px; margin: 0 auto; }

        header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 1.5rem;
            padding-bottom: 1rem;
            border-bottom: 1px solid var(--border-color);
            flex-wrap: wrap;
            gap: 1rem;
        }

        h1 { font-size: 1.6rem; color: var(--accent); }
        h2 { font-size: 1rem; color: var(--text-secondary); margin-bottom: 0.75rem; }

        .badge {
            display: inline-block;
            padding: 0.2rem 0.6rem;
            border: 1px solid var(--border-color);
            border-radius: 3px;
            font-size: 0.8rem;
        }
        .badge.ok { color: var(--accent); }
        .badge.down { color: var(--danger); border-color: var(--danger); }
        .badge.sim { color: var(--warn); border-color: var(--warn); }

        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 1rem;
            margin-bottom: 1.5rem;
        }

        .card {
            background: var(--bg-card);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 1rem;
        }
        .card .value { font-size: 1.8rem; margin: 0.25rem 0; }
        .card .label { color: var(--text-dim); font-size: 0.8rem; text-transform: uppercase; }

        table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
        th, td {
            text-align: left;
            padding: 0.4rem 0.6rem;
            border-bottom: 1px solid var(--border-color);
        }
        th { color: var(--text-dim); text-transform: uppercase; font-size: 0.75rem; }
        td { color: var(--text-secondary); }

        .section { margin-bottom: 1.5rem; }
        .empty { color: var(--text-dim); padding: 0.5rem 0; }

        button {
            font-family: inherit;
            background: transparent;
            color: var(--accent);
            border: 1px solid var(--border-color);
            border-radius: 3px;
            padding: 0.4rem 0.9rem;
            cursor: pointer;
        }
        button:hover { border-color: var(--accent); }
        button:disabled { color: var(--text-dim); cursor: wait; }

        #actionLog {
            font-size: 0.8rem;
            color: var(--text-secondary);
            white-space: pre-wrap;
            margin-top: 0.75rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>FINGERPULSE</h1>
            <div>
                {{if .daemon_running}}<span class="badge ok">DAEMON RUNNING</span>
                {{else}}<span class="badge down">DAEMON STOPPED</span>{{end}}
                {{if .simulation}}<span class="badge sim">SIMULATION</span>{{end}}
            </div>
        </header>

        <div class="grid">
            <div class="card">
                <div class="label">Terminals</div>
                <div class="value">{{.terminal_count}}</div>
            </div>
            <div class="card">
                <div class="label">Attendance Rows</div>
                <div class="value">{{.attendance_count}}</div>
            </div>
            <div class="card">
                <div class="label">Last Sync</div>
                <div class="value">{{if .last_run}}{{.last_run.Upserted}}{{else}}-{{end}}</div>
                <div class="label">{{if .last_run_at}}{{.last_run_at}}{{else}}never{{end}}</div>
            </div>
        </div>

        <div class="section card">
            <h2>Actions</h2>
            <button id="syncBtn" onclick="runSync()">Sync Now</button>
            <button id="testBtn" onclick="testConnection()">Test Connection</button>
            <a href="/report"><button type="button">Download Report</button></a>
            <div id="actionLog"></div>
        </div>

        <div class="section card">
            <h2>Terminal Status</h2>
            {{if .terminals}}
            <table>
                <tr><th>Host</th><th>Port</th><th>Reachable</th><th>Latency</th><th>Checked</th></tr>
                {{range .terminals}}
                <tr>
                    <td>{{.Host}}</td>
                    <td>{{.Port}}</td>
                    <td>{{if .Reachable}}<span class="badge ok">UP</span>{{else}}<span class="badge down">DOWN</span>{{end}}</td>
                    <td>{{printf "%.1f ms" .LatencyMs}}</td>
                    <td>{{.CheckedAt.Format "2006-01-02 15:04:05"}}</td>
                </tr>
                {{end}}
            </table>
            {{else}}<p class="empty">&gt; No status samples yet</p>{{end}}
        </div>

        <div class="section card">
            <h2>Recent Attendance</h2>
            {{if .attendance}}
            <table>
                <tr><th>Fingerprint ID</th><th>Date</th><th>Check In</th><th>Check Out</th><th>Updated</th></tr>
                {{range .attendance}}
                <tr>
                    <td>{{.FingerprintID}}</td>
                    <td>{{.Date}}</td>
                    <td>{{if .CheckIn}}{{.CheckIn}}{{else}}-{{end}}</td>
                    <td>{{if .CheckOut}}{{.CheckOut}}{{else}}-{{end}}</td>
                    <td>{{.UpdatedAt.Format "2006-01-02 15:04"}}</td>
                </tr>
                {{end}}
            </table>
            {{else}}<p class="empty">&gt; No attendance records in the last 7 days</p>{{end}}
        </div>

        <div class="section card">
            <h2>Sync Runs</h2>
            {{if .runs}}
            <table>
                <tr><th>Finished</th><th>Terminals</th><th>Pulled</th><th>Merged</th><th>Upserted</th><th>Skipped</th><th>Detail</th></tr>
                {{range .runs}}
                <tr>
                    <td>{{.FinishedAt.Format "2006-01-02 15:04:05"}}</td>
                    <td>{{.Terminals}}</td>
                    <td>{{.Pulled}}</td>
                    <td>{{.Merged}}</td>
                    <td>{{.Upserted}}</td>
                    <td>{{.Skipped}}</td>
                    <td>{{.Detail}}</td>
                </tr>
                {{end}}
            </table>
            {{else}}<p class="empty">&gt; No sync runs recorded</p>{{end}}
        </div>
    </div>

    <script>
        function log(msg) {
            document.getElementById('actionLog').textContent = msg;
        }

        async function runSync() {
            const btn = document.getElementById('syncBtn');
            btn.disabled = true;
            log('> Syncing...');
            try {
                const res = await fetch('/api/sync-logs', { method: 'POST' });
                const data = await res.json();
                if (!res.ok) {
                    log('> Sync failed: ' + (data.error || res.status));
                } else {
                    log('> Sync complete: ' + data.length + ' records');
                    setTimeout(() => location.reload(), 1500);
                }
            } catch (e) {
                log('> Sync error: ' + e);
            }
            btn.disabled = false;
        }

        async function testConnection() {
            const btn = document.getElementById('testBtn');
            btn.disabled = true;
            log('> Testing connection...');
            try {
                const res = await fetch('/api/test-connection', { method: 'POST' });
                const data = await res.json();
                if (data.logs) {
                    log(data.logs.map(l => '> ' + l.ip + ' :: ' + l.status).join('\n'));
                } else {
                    log('> Test failed: ' + (data.error || res.status));
                }
            } catch (e) {
                log('> Test error: ' + e);
            }
            btn.disabled = false;
        }
    </script>
</body>
</html>`

var templates = template.Must(template.New("dashboard.html").Parse(dashboardHTML))

// GetTemplates returns the parsed page templates.
func GetTemplates() *template.Template {
	return templates
}
