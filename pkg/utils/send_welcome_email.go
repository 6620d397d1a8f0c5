package utils

import "fmt"

func SendWelcomeEmail(to, firstName string) error {
	subject := "Welcome to RoomLedger 🏠"

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Welcome</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f6f8f7;
			margin: 0;
			padding: 0;
			color: #333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #2e8b57;
		}
		.header {
			background-color: #2e8b57;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
			font-size: 14px;
			line-height: 1.6;
			color: #444;
		}
		.footer {
			text-align: center;
			font-size: 12px;
			color: #999;
			padding: 14px;
		}
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Welcome to RoomLedger</h1></div>
			<div class="content">
				<p>Hi %s,</p>
				<p>Your account is ready. Create an apartment to get a join code
				for your roommates, or join one with a code you were given.</p>
				<p>Track shared expenses, split them fairly, and settle up when
				the month ends.</p>
			</div>
			<div class="footer">RoomLedger — shared expenses without the awkward math.</div>
		</div>
	</body>
	</html>
	`, firstName)

	return SendEmail(to, subject, body)
}
